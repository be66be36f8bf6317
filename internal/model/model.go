package model

import "time"

// Status is the lifecycle state of a RepositoryRecord
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusDeleted Status = "DELETED"
)

// Identity is a local user account. It is created by provisioning and is
// read-only to authentication and the repository workflows.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	UserName string `json:"user_name"`
	Name     string `json:"name,omitempty"`

	// CredentialHash is the bcrypt hash of the password, empty for
	// identities that only log in through OAuth
	CredentialHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// RepositoryRecord is the local registry row for a repository.
// Status moves ACTIVE -> DELETED once and the row is never removed.
type RepositoryRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`

	// ProviderRepositoryID correlates the record with the remote repository
	ProviderRepositoryID string `json:"provider_repository_id"`

	// CloneURL is copied from the provider at creation time
	CloneURL string `json:"clone_url,omitempty"`

	OwnerID string `json:"owner_id"`
	Status  Status `json:"status"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsActive reports whether the record has not been deleted
func (r *RepositoryRecord) IsActive() bool {
	return r != nil && r.Status == StatusActive
}
