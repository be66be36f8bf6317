package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inovacc/rael/internal/apperr"
	"github.com/inovacc/rael/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoJSON = `{"id":%d,"name":"alpha","full_name":"acme/alpha","private":true,
"clone_url":"https://github.com/acme/alpha.git","html_url":"https://github.com/acme/alpha",
"owner":{"login":"acme"}}`

func newTestProvider(t *testing.T, mux *http.ServeMux) *Provider {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rael-cli", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	p, err := New(provider.Options{
		Token:        "test-token",
		Organization: "acme",
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)

	return p
}

func TestNew_Validation(t *testing.T) {
	_, err := New(provider.Options{Organization: "acme"})
	assert.Error(t, err)

	_, err = New(provider.Options{Token: "t"})
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, provider.Names(), Name)

	p, err := provider.New(Name, provider.Options{Token: "t", Organization: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "github", p.Name())

	_, ok := provider.AsInspector(p)
	assert.True(t, ok)
}

func TestResolveUser(t *testing.T) {
	mux := http.NewServeMux()

	var baseURL string

	mux.HandleFunc("GET /orgs/acme/members", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`[{"login":"Alice","id":7}]`))
			return
		}

		w.Header().Set("Link", fmt.Sprintf(`<%s/orgs/acme/members?page=2&per_page=100>; rel="next"`, baseURL))
		_, _ = w.Write([]byte(`[{"login":"bob","id":1}]`))
	})

	p := newTestProvider(t, mux)
	baseURL = p.client.BaseURL.String()
	baseURL = baseURL[:len(baseURL)-1]

	user, err := p.ResolveUser(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "Alice", user.UserName)

	user, err = p.ResolveUser(context.Background(), "carol")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCreateRemoteRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "alpha", body["name"])
		assert.Equal(t, "demo", body["description"])
		assert.Equal(t, true, body["private"])

		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, repoJSON, 101)
	})

	p := newTestProvider(t, mux)

	repo, err := p.CreateRemoteRepository(context.Background(), "alpha", "demo", true)
	require.NoError(t, err)
	assert.Equal(t, "101", repo.ID)
	assert.Equal(t, "https://github.com/acme/alpha.git", repo.CloneURL)
	assert.True(t, repo.Private)
}

func TestCreateRemoteRepository_Failure(t *testing.T) {
	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orgs/acme/repos", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Repository creation failed."}`))
	})

	p := newTestProvider(t, mux)

	_, err := p.CreateRemoteRepository(context.Background(), "alpha", "", false)
	require.Error(t, err)

	var rp *apperr.RemoteProviderError
	require.ErrorAs(t, err, &rp)
	assert.Equal(t, http.StatusUnprocessableEntity, rp.Status)
	assert.Equal(t, "Repository creation failed.", rp.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repositories/101", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, repoJSON, 101)
	})
	mux.HandleFunc("PUT /repos/acme/alpha/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string `json:"message"`
			Content string `json:"content"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "Create file", body.Message)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("# alpha")), body.Content)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"name":"README.md"}}`))
	})

	p := newTestProvider(t, mux)

	require.NoError(t, p.CreateFile(context.Background(), "101", "README.md", []byte("# alpha")))

	err := p.CreateFile(context.Background(), "not-a-number", "README.md", nil)
	assert.Error(t, err)
}

func TestDeleteRemoteRepository(t *testing.T) {
	var deleted atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /repositories/101", func(w http.ResponseWriter, _ *http.Request) {
		if deleted.Swap(true) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))

			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	p := newTestProvider(t, mux)

	require.NoError(t, p.DeleteRemoteRepository(context.Background(), "101"))

	err := p.DeleteRemoteRepository(context.Background(), "101")
	require.Error(t, err)
	assert.True(t, provider.IsGone(err))
}

func TestGetRemoteRepository_RetriesReads(t *testing.T) {
	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repositories/101", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		_, _ = fmt.Fprintf(w, repoJSON, 101)
	})
	mux.HandleFunc("GET /repositories/404", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	p := newTestProvider(t, mux)

	repo, err := p.GetRemoteRepository(context.Background(), "101")
	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Equal(t, "acme/alpha", repo.FullName)
	assert.Equal(t, int32(2), calls.Load())

	repo, err = p.GetRemoteRepository(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, repo)
}

func TestIdempotentRetry_RoutesByMethod(t *testing.T) {
	var retried, direct int

	transport := &idempotentRetry{
		retry: roundTripFunc(func(*http.Request) (*http.Response, error) {
			retried++
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
		direct: roundTripFunc(func(*http.Request) (*http.Response, error) {
			direct++
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
	}

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete} {
		req, err := http.NewRequest(method, "http://example.com", nil)
		require.NoError(t, err)

		_, err = transport.RoundTrip(req)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, retried)
	assert.Equal(t, 3, direct)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
