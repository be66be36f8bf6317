package model

import "time"

// ReconcileKind names the divergence a journal entry records
type ReconcileKind string

const (
	// ReconcileOrphanedRemote is a remote repository created without a
	// local record whose compensating delete also failed
	ReconcileOrphanedRemote ReconcileKind = "ORPHANED_REMOTE"

	// ReconcilePendingRemoteDelete is a record marked DELETED whose remote
	// repository could not be deleted
	ReconcilePendingRemoteDelete ReconcileKind = "PENDING_REMOTE_DELETE"
)

// ReconcileEntry is a durable note that the registry and the provider
// disagree, kept until a manual reconcile resolves it.
type ReconcileEntry struct {
	Seq                  uint64        `json:"seq"`
	Kind                 ReconcileKind `json:"kind"`
	Provider             string        `json:"provider"`
	ProviderRepositoryID string        `json:"provider_repository_id"`
	RecordID             string        `json:"record_id,omitempty"`
	Name                 string        `json:"name"`
	LastError            string        `json:"last_error"`
	Attempts             int           `json:"attempts"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}
