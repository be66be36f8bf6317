package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/rael/internal/apperr"
	"github.com/inovacc/rael/internal/model"
)

const identityColumns = `id, email, user_name, name, password_hash, created_at`

// Identities reads and provisions local user accounts.
type Identities struct {
	db *sql.DB
}

// Create inserts a new identity. An empty ID is assigned a UUID.
func (s *Identities) Create(ctx context.Context, identity *model.Identity) error {
	if identity.Email == "" || identity.UserName == "" {
		return errors.New("email and user name are required")
	}

	if identity.ID == "" {
		identity.ID = uuid.New().String()
	}

	identity.Email = strings.ToLower(strings.TrimSpace(identity.Email))

	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+identityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, identity.ID, identity.Email, identity.UserName, identity.Name, identity.CredentialHash, formatTime(identity.CreatedAt))
	if isUniqueViolation(err) {
		return &apperr.ConflictError{Reason: apperr.EmailTaken, Subject: identity.Email}
	}

	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// FindByEmail returns the identity with the given email, or nil when none matches.
func (s *Identities) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+identityColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))

	return scanIdentity(row)
}

// FindByID returns the identity with the given ID, or nil when none matches.
func (s *Identities) FindByID(ctx context.Context, id string) (*model.Identity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+identityColumns+` FROM users WHERE id = ?`, id)

	return scanIdentity(row)
}
