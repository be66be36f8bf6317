package store

import (
	"context"
	"fmt"

	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/store/sqlite"
)

// IdentityStore reads and provisions local identities.
type IdentityStore interface {
	Create(ctx context.Context, identity *model.Identity) error
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
	FindByID(ctx context.Context, id string) (*model.Identity, error)
}

// Registry is the local repository registry. Lookups return nil, nil when
// nothing matches.
type Registry interface {
	Create(ctx context.Context, record model.RepositoryRecord) (*model.RepositoryRecord, error)
	FindActiveByName(ctx context.Context, name string) (*model.RepositoryRecord, error)
	FindByID(ctx context.Context, id string) (*model.RepositoryRecord, error)
	MarkDeleted(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]model.RepositoryRecord, error)
}

// ReconcileJournal keeps registry/provider divergences until they are resolved.
type ReconcileJournal interface {
	Append(entry model.ReconcileEntry) (model.ReconcileEntry, error)
	List() ([]model.ReconcileEntry, error)
	RecordAttempt(seq uint64, lastErr string) error
	Resolve(seq uint64) error
}

var (
	_ IdentityStore    = (*sqlite.Identities)(nil)
	_ Registry         = (*sqlite.Repositories)(nil)
	_ ReconcileJournal = (*Journal)(nil)
)

// Store bundles the relational database and the reconcile journal that live
// under one application directory.
type Store struct {
	db      *sqlite.Store
	journal *Journal
}

// Open opens the database and the journal, creating either when missing.
func Open(dbPath, journalPath string) (*Store, error) {
	db, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	journal, err := NewJournal(journalPath)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("opening reconcile journal: %w", err)
	}

	return &Store{db: db, journal: journal}, nil
}

// Identities returns the identity store.
func (s *Store) Identities() IdentityStore {
	return s.db.Identities()
}

// Repositories returns the repository registry.
func (s *Store) Repositories() Registry {
	return s.db.Repositories()
}

// Journal returns the reconcile journal.
func (s *Store) Journal() ReconcileJournal {
	return s.journal
}

// Close closes both backends.
func (s *Store) Close() error {
	jerr := s.journal.Close()

	if err := s.db.Close(); err != nil {
		return err
	}

	return jerr
}
