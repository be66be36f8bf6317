package auth

import (
	"context"
	"fmt"

	"github.com/inovacc/rael/internal/apperr"
	"github.com/inovacc/rael/internal/model"
)

// TokenCache persists the single bearer token kept per machine
type TokenCache interface {
	Save(token string) error
	Load() (token string, ok bool, err error)
	Clear() error
}

// Session is the credential context handed to protected commands. It reads
// the cached token on every call; nothing is kept in memory between calls.
type Session struct {
	cache  TokenCache
	tokens *Tokens
}

// NewSession binds a token cache to a verifier
func NewSession(cache TokenCache, tokens *Tokens) *Session {
	return &Session{cache: cache, tokens: tokens}
}

// Save replaces the cached token
func (s *Session) Save(token string) error {
	return s.cache.Save(token)
}

// Token returns the cached token, failing with MissingToken when there is none
func (s *Session) Token() (string, error) {
	token, ok, err := s.cache.Load()
	if err != nil {
		return "", fmt.Errorf("loading cached token: %w", err)
	}

	if !ok || token == "" {
		return "", &apperr.AuthenticationError{Reason: apperr.MissingToken}
	}

	return token, nil
}

// Identity verifies the cached token and returns its identity
func (s *Session) Identity(ctx context.Context) (*model.Identity, error) {
	token, err := s.Token()
	if err != nil {
		return nil, err
	}

	return s.tokens.Verify(ctx, token)
}

// Claims returns the verified claims of the cached token
func (s *Session) Claims() (*Claims, error) {
	token, err := s.Token()
	if err != nil {
		return nil, err
	}

	return s.tokens.Parse(token)
}
