package core

import (
	"context"
	"fmt"

	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/store"
)

// List returns every ACTIVE record in creation order. An empty registry
// yields an empty slice.
func (o *Orchestrator) List(ctx context.Context, creds Credentials) ([]model.RepositoryRecord, error) {
	return ListActive(ctx, creds, o.registry)
}

// ListActive is the list workflow without a provider. It only reads the
// registry, so callers need no provider credentials.
func ListActive(ctx context.Context, creds Credentials, registry store.Registry) ([]model.RepositoryRecord, error) {
	if _, err := creds.Identity(ctx); err != nil {
		return nil, err
	}

	records, err := registry.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	return records, nil
}
