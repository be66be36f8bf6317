package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inovacc/rael/internal/apperr"
	"golang.org/x/oauth2"
)

// State is a step of the browser handshake
type State string

const (
	StateInit          State = "INIT"
	StateBrowserOpened State = "BROWSER_OPENED"
	StateListening     State = "LISTENING"
	StateCodeReceived  State = "CODE_RECEIVED"
	StateExchanging    State = "EXCHANGING"
	StateCompleted     State = "COMPLETED"
	StateFailed        State = "FAILED"
	StateAborted       State = "ABORTED"
	StateShutdown      State = "SHUTDOWN"
)

var transitions = map[State][]State{
	StateInit:          {StateBrowserOpened, StateFailed, StateAborted},
	StateBrowserOpened: {StateListening, StateAborted},
	StateListening:     {StateCodeReceived, StateAborted},
	StateCodeReceived:  {StateExchanging, StateAborted},
	StateExchanging:    {StateCompleted, StateFailed, StateAborted},
	StateCompleted:     {StateShutdown},
	StateFailed:        {StateShutdown},
	StateAborted:       {StateShutdown},
}

const (
	successPage = `<html><body>
<h1>Authentication successful</h1>
<p>You can close this window and return to the terminal.</p>
<script>window.close();</script>
</body></html>`

	failurePage = `<html><body>
<h1>Authentication failed</h1>
<p>%s</p>
</body></html>`

	shutdownTimeout = 5 * time.Second
)

// Browser opens a URL in the user's browser
type Browser interface {
	Browse(url string) error
}

// OAuthConfig configures the browser handshake
type OAuthConfig struct {
	// OAuth2 holds the client, endpoint and scopes. Its RedirectURL is
	// overwritten with the bound callback address.
	OAuth2 *oauth2.Config

	// Port is the callback port; 0 picks a free one.
	Port int

	// Path is the callback path, e.g. /api/auth/google/callback
	Path string

	// Timeout bounds the whole handshake.
	Timeout time.Duration

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State)
}

// OAuthAuthenticator logs users in through a browser redirect and a
// one-shot loopback listener. Only one handshake runs per Login call.
type OAuthAuthenticator struct {
	cfg        OAuthConfig
	profiles   ProfileFetcher
	identities IdentityFinder
	tokens     *Tokens
	cache      TokenCache
	browser    Browser
	out        io.Writer
	logger     *slog.Logger
}

// NewOAuthAuthenticator wires a handshake runner. Messages for the user go
// to out; a nil logger means slog.Default().
func NewOAuthAuthenticator(cfg OAuthConfig, profiles ProfileFetcher, identities IdentityFinder, tokens *Tokens,
	cache TokenCache, browser Browser, out io.Writer, logger *slog.Logger,
) *OAuthAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}

	if out == nil {
		out = io.Discard
	}

	if cfg.Path == "" {
		cfg.Path = "/callback"
	}

	return &OAuthAuthenticator{
		cfg:        cfg,
		profiles:   profiles,
		identities: identities,
		tokens:     tokens,
		cache:      cache,
		browser:    browser,
		out:        out,
		logger:     logger,
	}
}

// Login runs one handshake. On success the issued token has already been
// written to the token cache and is returned as well. Cancelling ctx shuts
// the listener down immediately.
func (a *OAuthAuthenticator) Login(ctx context.Context) (string, error) {
	h := &handshake{
		OAuthAuthenticator: a,
		state:              StateInit,
		result:             make(chan handshakeResult, 1),
	}

	return h.run(ctx)
}

type handshakeResult struct {
	token string
	err   error
}

type handshake struct {
	*OAuthAuthenticator

	mu    sync.Mutex
	state State

	oauth    oauth2.Config
	nonce    string
	ctx      context.Context
	server   *http.Server
	handled  atomic.Bool
	result   chan handshakeResult
	shutdown sync.Once
}

// transition moves to next when the table allows it and reports whether it did
func (h *handshake) transition(next State) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	allowed := false

	for _, s := range transitions[h.state] {
		if s == next {
			allowed = true
			break
		}
	}

	if !allowed {
		h.logger.Debug("oauth transition ignored", slog.String("from", string(h.state)), slog.String("to", string(next)))
		return false
	}

	from := h.state
	h.state = next

	h.logger.Debug("oauth transition", slog.String("from", string(from)), slog.String("to", string(next)))

	if h.cfg.OnTransition != nil {
		h.cfg.OnTransition(from, next)
	}

	return true
}

func (h *handshake) run(parent context.Context) (string, error) {
	timeout := h.cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	h.ctx = ctx

	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(h.cfg.Port)))
	if err != nil {
		h.transition(StateFailed)
		h.transition(StateShutdown)

		return "", fmt.Errorf("binding callback listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(h.cfg.Path, h.callback)

	h.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer h.close(false)

	nonce, err := randomState()
	if err != nil {
		_ = listener.Close()
		h.transition(StateFailed)

		return "", err
	}

	h.nonce = nonce
	h.oauth = *h.cfg.OAuth2
	h.oauth.RedirectURL = fmt.Sprintf("http://localhost:%d%s", listener.Addr().(*net.TCPAddr).Port, h.cfg.Path)

	authURL := h.oauth.AuthCodeURL(nonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	h.transition(StateBrowserOpened)

	_, _ = fmt.Fprintln(h.out, "Opening browser for Google sign-in...")

	if h.browser == nil {
		_, _ = fmt.Fprintf(h.out, "Open this URL to continue:\n  %s\n", authURL)
	} else if err := h.browser.Browse(authURL); err != nil {
		h.logger.Warn("could not open browser", slog.Any("error", err))
		_, _ = fmt.Fprintf(h.out, "Could not open a browser. Open this URL to continue:\n  %s\n", authURL)
	}

	h.transition(StateListening)

	serveErr := make(chan error, 1)

	go func() {
		if err := h.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case res := <-h.result:
		return res.token, res.err
	case err := <-serveErr:
		h.transition(StateAborted)

		return "", fmt.Errorf("callback listener: %w", err)
	case <-ctx.Done():
		h.transition(StateAborted)
		h.close(true)

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("login timed out after %s", timeout)
		}

		return "", fmt.Errorf("login cancelled: %w", ctx.Err())
	}
}

// close releases the listener exactly once. immediate drops in-flight
// connections; otherwise the pending response is flushed first.
func (h *handshake) close(immediate bool) {
	h.shutdown.Do(func() {
		if immediate {
			_ = h.server.Close()
		} else {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			_ = h.server.Shutdown(shutdownCtx)
		}

		h.mu.Lock()
		terminal := h.state == StateCompleted || h.state == StateFailed || h.state == StateAborted
		h.mu.Unlock()

		if terminal {
			h.transition(StateShutdown)
		}
	})
}

func (h *handshake) callback(w http.ResponseWriter, r *http.Request) {
	if !h.handled.CompareAndSwap(false, true) {
		http.Error(w, "login already handled", http.StatusServiceUnavailable)
		return
	}

	if !h.transition(StateCodeReceived) {
		http.Error(w, "login is no longer accepting callbacks", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query()

	if reason := query.Get("error"); reason != "" {
		h.abort(w, fmt.Errorf("provider returned error: %s", reason))
		return
	}

	if query.Get("state") != h.nonce {
		h.abort(w, errors.New("state parameter mismatch"))
		return
	}

	code := query.Get("code")
	if code == "" {
		h.abort(w, errors.New("no authorization code received"))
		return
	}

	if !h.transition(StateExchanging) {
		return
	}

	token, err := h.exchange(code)
	if err != nil {
		if h.transition(StateFailed) {
			h.respond(w, http.StatusInternalServerError, fmt.Sprintf(failurePage, html.EscapeString(err.Error())))
		}

		h.result <- handshakeResult{err: err}

		return
	}

	if !h.transition(StateCompleted) {
		h.result <- handshakeResult{err: errors.New("login aborted")}
		return
	}

	// run may already have returned on cancellation; the token must not
	// outlive a login the caller was told was cancelled
	if err := h.ctx.Err(); err != nil {
		h.respond(w, http.StatusServiceUnavailable, fmt.Sprintf(failurePage, "login was cancelled"))
		h.result <- handshakeResult{err: fmt.Errorf("login cancelled: %w", err)}

		return
	}

	if err := h.cache.Save(token); err != nil {
		h.respond(w, http.StatusInternalServerError, fmt.Sprintf(failurePage, "could not save the token"))
		h.result <- handshakeResult{err: fmt.Errorf("saving token: %w", err)}

		return
	}

	h.respond(w, http.StatusOK, successPage)
	h.result <- handshakeResult{token: token}
}

func (h *handshake) abort(w http.ResponseWriter, err error) {
	h.transition(StateAborted)
	h.respond(w, http.StatusBadRequest, fmt.Sprintf(failurePage, html.EscapeString(err.Error())))
	h.result <- handshakeResult{err: err}
}

func (h *handshake) respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// exchange trades code for a provider token, resolves the local identity by
// the profile email and issues an application token
func (h *handshake) exchange(code string) (string, error) {
	providerToken, err := h.oauth.Exchange(h.ctx, code)
	if err != nil {
		return "", remoteError("exchange code", err)
	}

	email, err := h.profiles.Email(h.ctx, providerToken)
	if err != nil {
		return "", remoteError("fetch profile", err)
	}

	identity, err := h.identities.FindByEmail(h.ctx, email)
	if err != nil {
		return "", fmt.Errorf("looking up identity: %w", err)
	}

	if identity == nil {
		return "", &apperr.AuthenticationError{Reason: apperr.UnknownRemoteIdentity, Err: fmt.Errorf("no identity for %s", email)}
	}

	return h.tokens.Issue(identity)
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
