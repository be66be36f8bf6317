package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/inovacc/rael/internal/apperr"
	"github.com/inovacc/rael/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memIdentities struct {
	byID map[string]*model.Identity
}

func newMemIdentities(identities ...*model.Identity) *memIdentities {
	m := &memIdentities{byID: make(map[string]*model.Identity)}
	for _, id := range identities {
		m.byID[id.ID] = id
	}

	return m
}

func (m *memIdentities) FindByEmail(_ context.Context, email string) (*model.Identity, error) {
	for _, id := range m.byID {
		if strings.EqualFold(id.Email, email) {
			return id, nil
		}
	}

	return nil, nil
}

func (m *memIdentities) FindByID(_ context.Context, id string) (*model.Identity, error) {
	return m.byID[id], nil
}

type memCache struct {
	mu     sync.Mutex
	token  string
	ok     bool
	writes int
}

func (c *memCache) Save(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token, c.ok = token, true
	c.writes++

	return nil
}

func (c *memCache) Load() (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.token, c.ok, nil
}

func (c *memCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token, c.ok = "", false

	return nil
}

func (c *memCache) saved() (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.token, c.writes
}

func alice(t *testing.T) *model.Identity {
	t.Helper()

	hash, err := HashPassword("secret")
	require.NoError(t, err)

	return &model.Identity{ID: "u-1", Email: "a@b.com", UserName: "alice", CredentialHash: hash}
}

func newTestTokens(t *testing.T, identities IdentityFinder) *Tokens {
	t.Helper()

	tokens, err := NewTokens("test-secret", identities)
	require.NoError(t, err)

	return tokens
}

func TestNewTokens_EmptySecret(t *testing.T) {
	_, err := NewTokens("", newMemIdentities())
	assert.Error(t, err)
}

func TestTokens_IssueVerify(t *testing.T) {
	user := alice(t)
	tokens := newTestTokens(t, newMemIdentities(user))

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issuedAt }

	token, err := tokens.Issue(user)
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.True(t, issuedAt.Add(TokenTTL).Equal(claims.ExpiresAt.Time))

	got, err := tokens.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	t.Run("expired", func(t *testing.T) {
		tokens.now = func() time.Time { return issuedAt.Add(TokenTTL + time.Second) }
		defer func() { tokens.now = func() time.Time { return issuedAt } }()

		identity, err := tokens.Verify(context.Background(), token)
		assert.Nil(t, identity)
		assert.True(t, apperr.IsAuthentication(err, apperr.ExpiredToken))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokens("other-secret", newMemIdentities(user))
		require.NoError(t, err)

		other.now = tokens.now

		identity, err := other.Verify(context.Background(), token)
		assert.Nil(t, identity)
		assert.True(t, apperr.IsAuthentication(err, apperr.InvalidSignature))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Verify(context.Background(), "not-a-token")
		assert.True(t, apperr.IsAuthentication(err, apperr.InvalidSignature))
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tokens.Verify(context.Background(), unsigned)
		assert.True(t, apperr.IsAuthentication(err, apperr.InvalidSignature))
	})

	t.Run("identity removed", func(t *testing.T) {
		orphan := &model.Identity{ID: "u-gone"}

		token, err := tokens.Issue(orphan)
		require.NoError(t, err)

		identity, err := tokens.Verify(context.Background(), token)
		assert.Nil(t, identity)
		assert.True(t, apperr.IsNotFound(err, apperr.UserMissing))
	})
}

func TestCredentialAuthenticator(t *testing.T) {
	user := alice(t)
	identities := newMemIdentities(user, &model.Identity{ID: "u-2", Email: "oauth@b.com", UserName: "bob"})
	tokens := newTestTokens(t, identities)
	authenticator := NewCredentialAuthenticator(identities, tokens, nil)
	cache := &memCache{}
	session := NewSession(cache, tokens)

	token, err := authenticator.Authenticate(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	require.NoError(t, session.Save(token))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "a@b.com", "wrong"},
		{"unknown email", "nobody@b.com", "secret"},
		{"no credential hash", "oauth@b.com", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := authenticator.Authenticate(context.Background(), tt.email, tt.password)
			assert.Empty(t, got)
			assert.True(t, apperr.IsAuthentication(err, apperr.InvalidCredentials))

			cached, writes := cache.saved()
			assert.Equal(t, token, cached)
			assert.Equal(t, 1, writes)
		})
	}
}

func TestSession(t *testing.T) {
	user := alice(t)
	identities := newMemIdentities(user)
	tokens := newTestTokens(t, identities)
	cache := &memCache{}
	session := NewSession(cache, tokens)

	_, err := session.Identity(context.Background())
	assert.True(t, apperr.IsAuthentication(err, apperr.MissingToken))

	token, err := tokens.Issue(user)
	require.NoError(t, err)
	require.NoError(t, session.Save(token))

	identity, err := session.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.UserName)

	claims, err := session.Claims()
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	require.NoError(t, cache.Clear())

	_, err = session.Identity(context.Background())
	assert.True(t, apperr.IsAuthentication(err, apperr.MissingToken))
}
