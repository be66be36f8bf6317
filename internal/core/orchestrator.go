package core

import (
	"context"
	"log/slog"

	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/provider"
	"github.com/inovacc/rael/internal/store"
	"github.com/inovacc/rael/internal/textgen"
)

// FallbackDescription replaces a description that could not be generated
const FallbackDescription = "No description provided"

// Credentials resolves the identity behind the current invocation
type Credentials interface {
	Identity(ctx context.Context) (*model.Identity, error)
}

// Orchestrator runs the repository workflows.
type Orchestrator struct {
	provider  provider.RepositoryProvider
	registry  store.Registry
	journal   store.ReconcileJournal
	generator textgen.Generator
	logger    *slog.Logger
}

// New wires an orchestrator. generator may be nil, in which case generated
// descriptions fall back to FallbackDescription; a nil logger means
// slog.Default().
func New(p provider.RepositoryProvider, registry store.Registry, journal store.ReconcileJournal,
	generator textgen.Generator, logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		provider:  p,
		registry:  registry,
		journal:   journal,
		generator: generator,
		logger:    logger.With(slog.String("provider", p.Name())),
	}
}

// journalDivergence records entry, logging instead of failing when the
// journal itself cannot be written
func (o *Orchestrator) journalDivergence(entry model.ReconcileEntry) {
	entry.Provider = o.provider.Name()

	stored, err := o.journal.Append(entry)
	if err != nil {
		o.logger.Error("could not journal divergence",
			slog.String("kind", string(entry.Kind)),
			slog.String("repo", entry.Name),
			slog.String("provider_repository_id", entry.ProviderRepositoryID),
			slog.Any("error", err))

		return
	}

	o.logger.Warn("divergence journaled",
		slog.Uint64("seq", stored.Seq),
		slog.String("kind", string(stored.Kind)),
		slog.String("repo", stored.Name))
}
