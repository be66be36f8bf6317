package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inovacc/rael/internal/apperr"
	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/provider"
)

// Delete retires the ACTIVE repository called name. Only its owner may
// delete it. The record is marked DELETED before the remote call.
func (o *Orchestrator) Delete(ctx context.Context, creds Credentials, name string) (*model.RepositoryRecord, error) {
	identity, err := creds.Identity(ctx)
	if err != nil {
		return nil, err
	}

	record, err := o.registry.FindActiveByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("looking up repository: %w", err)
	}

	if record == nil {
		return nil, &apperr.NotFoundError{Reason: apperr.RepositoryMissing, Subject: name}
	}

	if record.OwnerID != identity.ID {
		return nil, &apperr.AuthorizationError{Reason: apperr.NotOwner, Subject: name}
	}

	if err := o.registry.MarkDeleted(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("marking %q deleted: %w", name, err)
	}

	logger := o.logger.With(slog.String("repo", name), slog.String("provider_repository_id", record.ProviderRepositoryID))

	err = o.provider.DeleteRemoteRepository(ctx, record.ProviderRepositoryID)
	switch {
	case err == nil:
		logger.Info("remote repository deleted")
	case provider.IsGone(err):
		logger.Info("remote repository already gone")
	default:
		o.journalDivergence(model.ReconcileEntry{
			Kind:                 model.ReconcilePendingRemoteDelete,
			ProviderRepositoryID: record.ProviderRepositoryID,
			RecordID:             record.ID,
			Name:                 name,
			LastError:            err.Error(),
		})

		return nil, fmt.Errorf("%q is deleted locally but the remote delete failed; run 'rael repos reconcile' to retry: %w", name, err)
	}

	deleted, err := o.registry.FindByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading %q: %w", name, err)
	}

	return deleted, nil
}
