package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inovacc/rael/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("rael-dummy-password"), bcrypt.DefaultCost)
	return hash
})

// HashPassword returns the bcrypt hash stored for password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(hash), nil
}

// CredentialAuthenticator logs users in with email and password.
type CredentialAuthenticator struct {
	identities IdentityFinder
	tokens     *Tokens
	logger     *slog.Logger
}

// NewCredentialAuthenticator returns an authenticator; a nil logger means slog.Default().
func NewCredentialAuthenticator(identities IdentityFinder, tokens *Tokens, logger *slog.Logger) *CredentialAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}

	return &CredentialAuthenticator{identities: identities, tokens: tokens, logger: logger}
}

// Authenticate checks email and password and returns a newly issued token.
// The token is not persisted.
func (a *CredentialAuthenticator) Authenticate(ctx context.Context, email, password string) (string, error) {
	identity, err := a.identities.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("looking up identity: %w", err)
	}

	if identity == nil || identity.CredentialHash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))

		a.logger.Debug("credential login rejected", slog.String("email", email), slog.String("reason", "unknown email"))

		return "", &apperr.AuthenticationError{Reason: apperr.InvalidCredentials}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.CredentialHash), []byte(password)); err != nil {
		a.logger.Debug("credential login rejected", slog.String("email", email), slog.String("reason", "password mismatch"))

		return "", &apperr.AuthenticationError{Reason: apperr.InvalidCredentials}
	}

	token, err := a.tokens.Issue(identity)
	if err != nil {
		return "", err
	}

	a.logger.Debug("credential login succeeded", slog.String("user_id", identity.ID))

	return token, nil
}
