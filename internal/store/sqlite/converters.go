package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/inovacc/rael/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*model.Identity, error) {
	var (
		identity  model.Identity
		createdAt string
	)

	err := row.Scan(&identity.ID, &identity.Email, &identity.UserName, &identity.Name,
		&identity.CredentialHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	identity.CreatedAt = parseTime(createdAt)

	return &identity, nil
}

func scanRepository(row rowScanner) (*model.RepositoryRecord, error) {
	var (
		record               model.RepositoryRecord
		isPrivate            int64
		status               string
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)

	err := row.Scan(&record.ID, &record.Name, &record.Description, &isPrivate, &record.ProviderRepositoryID,
		&record.CloneURL, &record.OwnerID, &status, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("scanning repository: %w", err)
	}

	record.IsPrivate = isPrivate == 1
	record.Status = model.Status(status)
	record.CreatedAt = parseTime(createdAt)
	record.UpdatedAt = parseTime(updatedAt)

	if deletedAt.Valid {
		t := parseTime(deletedAt.String)
		record.DeletedAt = &t
	}

	return &record, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}

	return 0
}

