// Package provider defines the capability set rael needs from a remote
// repository host and a registry of the variants that implement it.
//
// Variants register themselves from their own package's init function:
//
//	import _ "github.com/inovacc/rael/internal/provider/github"
//
// The orchestrator only sees [RepositoryProvider], so adding a variant never
// touches the workflows.
package provider

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/inovacc/rael/internal/model"
)

// DefaultTimeout bounds a single provider request when Options.Timeout is zero
const DefaultTimeout = 30 * time.Second

// RepositoryProvider is implemented by every remote host variant. Each call
// is a single request except where a variant retries idempotent reads.
type RepositoryProvider interface {
	// Name returns the variant identifier, e.g. "github"
	Name() string

	// ResolveUser looks up a member of the organization by login and
	// returns nil, nil when there is none.
	ResolveUser(ctx context.Context, userName string) (*model.RemoteUser, error)

	// CreateRemoteRepository creates an organization repository.
	CreateRemoteRepository(ctx context.Context, name, description string, isPrivate bool) (*model.ProviderRepository, error)

	// CreateFile commits content at path in the repository.
	CreateFile(ctx context.Context, providerRepositoryID, path string, content []byte) error

	// DeleteRemoteRepository deletes the repository. Deleting a repository
	// that is already gone fails with a RemoteProviderError.
	DeleteRemoteRepository(ctx context.Context, providerRepositoryID string) error
}

// Inspector is an optional capability for variants that can fetch a
// repository by id. It returns nil, nil when the repository does not exist.
type Inspector interface {
	GetRemoteRepository(ctx context.Context, providerRepositoryID string) (*model.ProviderRepository, error)
}

// Options configures a variant
type Options struct {
	// Token authenticates every request
	Token string

	// Organization scopes member lookups and repository creation
	Organization string

	// BaseURL overrides the API endpoint; required by self-hosted variants
	BaseURL string

	// Timeout bounds each request; zero means DefaultTimeout
	Timeout time.Duration

	// Transport replaces the base HTTP transport, mostly for tests
	Transport http.RoundTripper

	Logger *slog.Logger
}

// RequestTimeout returns the effective per-request timeout
func (o Options) RequestTimeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}

	return o.Timeout
}

// Log returns the configured logger or slog.Default()
func (o Options) Log() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}

	return o.Logger
}

// BaseTransport returns the configured transport or http.DefaultTransport
func (o Options) BaseTransport() http.RoundTripper {
	if o.Transport == nil {
		return http.DefaultTransport
	}

	return o.Transport
}

// AsInspector returns p as an Inspector when it supports the capability
func AsInspector(p RepositoryProvider) (Inspector, bool) {
	i, ok := p.(Inspector)
	return i, ok
}
