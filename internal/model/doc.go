// Package model defines the data structures used throughout rael.
//
// These models are shared by the registry, the providers and the command
// layer, with storage-specific conversions handled by each store.
//
// # Identity
//
// An [Identity] is a local account. Tokens carry its ID; the credential
// hash never leaves the store.
//
// # RepositoryRecord
//
// A [RepositoryRecord] is the local row for a repository:
//
//	type RepositoryRecord struct {
//	    ID                   string // UUID
//	    Name                 string // unique among ACTIVE records only
//	    ProviderRepositoryID string // correlates with ProviderRepository.ID
//	    OwnerID              string // Identity.ID of the creator
//	    Status               Status // ACTIVE, then DELETED exactly once
//	}
//
// # ReconcileEntry
//
// A [ReconcileEntry] records a divergence between the registry and the
// provider left behind by a partially failed workflow.
package model
