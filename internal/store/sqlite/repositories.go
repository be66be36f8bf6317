package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/rael/internal/apperr"
	"github.com/inovacc/rael/internal/model"
)

const repositoryColumns = `id, name, description, is_private, provider_repository_id, clone_url,
	owner_id, status, created_at, updated_at, deleted_at`

// Repositories is the local repository registry. Rows are never removed;
// deletion only flips the status.
type Repositories struct {
	db *sql.DB
}

// Create inserts record as ACTIVE and returns the stored copy. Another
// ACTIVE record with the same name yields a ConflictError.
func (r *Repositories) Create(ctx context.Context, record model.RepositoryRecord) (*model.RepositoryRecord, error) {
	if record.Name == "" {
		return nil, errors.New("repository name is required")
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	now := time.Now()
	record.Status = model.StatusActive
	record.CreatedAt = now
	record.UpdatedAt = now
	record.DeletedAt = nil

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO repositories (`+repositoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`, record.ID, record.Name, record.Description, boolToInt(record.IsPrivate), record.ProviderRepositoryID,
		record.CloneURL, record.OwnerID, string(record.Status), formatTime(now), formatTime(now))
	if isUniqueViolation(err) {
		return nil, &apperr.ConflictError{Reason: apperr.NameTaken, Subject: record.Name}
	}

	if err != nil {
		return nil, fmt.Errorf("inserting repository: %w", err)
	}

	return &record, nil
}

// FindActiveByName returns the ACTIVE record named name, or nil.
func (r *Repositories) FindActiveByName(ctx context.Context, name string) (*model.RepositoryRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+repositoryColumns+` FROM repositories
		WHERE name = ? AND status = 'ACTIVE'
	`, name)

	return scanRepository(row)
}

// FindByID returns the record with the given ID regardless of status, or nil.
func (r *Repositories) FindByID(ctx context.Context, id string) (*model.RepositoryRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+repositoryColumns+` FROM repositories WHERE id = ?`, id)

	return scanRepository(row)
}

// MarkDeleted sets the record status to DELETED. It does not check the
// current status; guarding against a double delete is the caller's job.
func (r *Repositories) MarkDeleted(ctx context.Context, id string) error {
	now := formatTime(time.Now())

	res, err := r.db.ExecContext(ctx, `
		UPDATE repositories SET status = 'DELETED', deleted_at = ?, updated_at = ?
		WHERE id = ?
	`, now, now, id)
	if err != nil {
		return fmt.Errorf("marking repository deleted: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking repository deleted: %w", err)
	}

	if n == 0 {
		return &apperr.NotFoundError{Reason: apperr.RepositoryMissing, Subject: id}
	}

	return nil
}

// ListActive returns every ACTIVE record in insertion order.
func (r *Repositories) ListActive(ctx context.Context) ([]model.RepositoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+repositoryColumns+` FROM repositories
		WHERE status = 'ACTIVE'
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]model.RepositoryRecord, 0)

	for rows.Next() {
		record, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, *record)
	}

	return records, rows.Err()
}
