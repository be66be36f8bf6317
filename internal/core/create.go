package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inovacc/rael/internal/apperr"
	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/textgen"
)

const (
	readmePath    = "README.md"
	gitignorePath = ".gitignore"

	gitignoreContent = "node_modules/\n.env\n"

	compensationTimeout = 30 * time.Second
)

// CreateRequest describes a repository to provision
type CreateRequest struct {
	Name        string
	Description string
	Private     bool

	// GenerateDescription asks for a generated description when
	// Description is empty
	GenerateDescription bool

	Readme    bool
	Gitignore bool
}

// CreateResult is the outcome of a successful create
type CreateResult struct {
	Record *model.RepositoryRecord
	Remote *model.ProviderRepository

	// FileErrors lists auxiliary files that could not be created. They do
	// not undo the create.
	FileErrors []error
}

// Create provisions a repository remotely, then registers it locally.
func (o *Orchestrator) Create(ctx context.Context, creds Credentials, req CreateRequest) (*CreateResult, error) {
	identity, err := creds.Identity(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.New("repository name is required")
	}

	existing, err := o.registry.FindActiveByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking repository name: %w", err)
	}

	if existing != nil {
		return nil, &apperr.ConflictError{Reason: apperr.NameTaken, Subject: name}
	}

	remoteUser, err := o.provider.ResolveUser(ctx, identity.UserName)
	if err != nil {
		return nil, fmt.Errorf("resolving provider user: %w", err)
	}

	if remoteUser == nil {
		return nil, &apperr.NotFoundError{Reason: apperr.ProviderIdentityMissing, Subject: identity.UserName}
	}

	description := o.describe(ctx, name, req)

	remote, err := o.provider.CreateRemoteRepository(ctx, name, description, req.Private)
	if err != nil {
		return nil, fmt.Errorf("creating remote repository: %w", err)
	}

	o.logger.Info("remote repository created", slog.String("repo", name), slog.String("provider_repository_id", remote.ID))

	record, err := o.registry.Create(ctx, model.RepositoryRecord{
		Name:                 name,
		Description:          description,
		IsPrivate:            req.Private,
		ProviderRepositoryID: remote.ID,
		CloneURL:             remote.CloneURL,
		OwnerID:              identity.ID,
	})
	if err != nil {
		o.compensateCreate(ctx, name, remote, err)

		return nil, fmt.Errorf("registering repository %q: %w", name, err)
	}

	result := &CreateResult{Record: record, Remote: remote}

	if req.Readme {
		result.addFile(o.createFile(ctx, remote.ID, readmePath, []byte("# "+name)))
	}

	if req.Gitignore {
		result.addFile(o.createFile(ctx, remote.ID, gitignorePath, []byte(gitignoreContent)))
	}

	return result, nil
}

// describe returns the requested description, generating one when asked.
// Generation failures fall back to FallbackDescription.
func (o *Orchestrator) describe(ctx context.Context, name string, req CreateRequest) string {
	if req.Description != "" || !req.GenerateDescription {
		return req.Description
	}

	if o.generator == nil {
		o.logger.Warn("no text generator configured, using fallback description", slog.String("repo", name))
		return FallbackDescription
	}

	text, err := o.generator.Generate(ctx, textgen.DescriptionPrompt(name))
	if err != nil {
		o.logger.Warn("description generation failed, using fallback", slog.String("repo", name), slog.Any("error", err))
		return FallbackDescription
	}

	return text
}

// compensateCreate deletes the remote repository whose registration failed.
// If that fails too, the orphan is journaled for reconcile.
func (o *Orchestrator) compensateCreate(ctx context.Context, name string, remote *model.ProviderRepository, cause error) {
	o.logger.Warn("registry write failed after remote create, compensating",
		slog.String("repo", name), slog.Any("error", cause))

	// the caller may already be cancelled; the undo still gets its own window
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	err := o.provider.DeleteRemoteRepository(cctx, remote.ID)
	if err == nil {
		o.logger.Info("compensating delete succeeded", slog.String("repo", name))
		return
	}

	o.journalDivergence(model.ReconcileEntry{
		Kind:                 model.ReconcileOrphanedRemote,
		ProviderRepositoryID: remote.ID,
		Name:                 name,
		LastError:            err.Error(),
	})
}

func (o *Orchestrator) createFile(ctx context.Context, providerRepositoryID, path string, content []byte) error {
	if err := o.provider.CreateFile(ctx, providerRepositoryID, path, content); err != nil {
		o.logger.Warn("could not create file", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

func (r *CreateResult) addFile(err error) {
	if err != nil {
		r.FileErrors = append(r.FileErrors, err)
	}
}
