// Package core implements the repository lifecycle workflows of rael.
//
// The [Orchestrator] sequences calls across a remote
// [provider.RepositoryProvider] and the local [store.Registry]. The two
// systems share no transaction, so each workflow is a small saga:
//
//   - Create is provider-first. When the registry write fails after the
//     remote repository exists, the remote repository is deleted again; if
//     that also fails an ORPHANED_REMOTE entry is journaled.
//   - Delete is registry-first. When the remote delete fails after the
//     record was marked DELETED, a PENDING_REMOTE_DELETE entry is journaled.
//     A 404 from the provider counts as already deleted.
//
// Journal entries are only replayed by [Orchestrator.Reconcile], which is
// run by hand; nothing retries in the background. [Orchestrator.Check]
// reports ACTIVE records whose remote repository is gone.
//
// Every workflow starts by resolving the caller through the [Credentials]
// passed in, so the token cache is never read implicitly.
//
// [provider.RepositoryProvider]: github.com/inovacc/rael/internal/provider.RepositoryProvider
// [store.Registry]: github.com/inovacc/rael/internal/store.Registry
package core
