package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/inovacc/rael/internal/apperr"
	"github.com/inovacc/rael/internal/model"
)

// TokenTTL is how long an issued token stays valid
const TokenTTL = 7 * 24 * time.Hour

// IdentityFinder looks up local identities. Lookups return nil, nil when
// nothing matches.
type IdentityFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
	FindByID(ctx context.Context, id string) (*model.Identity, error)
}

// Claims is the payload of an issued token
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies signed bearer tokens.
type Tokens struct {
	secret     []byte
	identities IdentityFinder
	now        func() time.Time
}

// NewTokens returns a Tokens signing with secret.
func NewTokens(secret string, identities IdentityFinder) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is empty")
	}

	return &Tokens{
		secret:     []byte(secret),
		identities: identities,
		now:        time.Now,
	}, nil
}

// Issue signs a new token for identity.
func (t *Tokens) Issue(identity *model.Identity) (string, error) {
	now := t.now()

	claims := Claims{
		UserID: identity.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Parse checks the signature and expiry of token and returns its claims.
func (t *Tokens) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}

		return t.secret, nil
	})
	if err != nil {
		return nil, &apperr.AuthenticationError{Reason: apperr.InvalidSignature, Err: err}
	}

	if !claims.VerifyExpiresAt(t.now(), true) {
		return nil, &apperr.AuthenticationError{Reason: apperr.ExpiredToken}
	}

	if claims.UserID == "" {
		return nil, &apperr.AuthenticationError{Reason: apperr.InvalidSignature, Err: errors.New("token has no subject")}
	}

	return claims, nil
}

// Verify resolves token to the identity it was issued for. It never
// returns a partially populated identity.
func (t *Tokens) Verify(ctx context.Context, token string) (*model.Identity, error) {
	claims, err := t.Parse(token)
	if err != nil {
		return nil, err
	}

	identity, err := t.identities.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading identity: %w", err)
	}

	if identity == nil {
		return nil, &apperr.NotFoundError{Reason: apperr.UserMissing, Subject: claims.UserID}
	}

	return identity, nil
}
