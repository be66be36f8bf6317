// Package github implements the repository provider backed by the GitHub
// REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v82/github"
	"github.com/inovacc/rael/internal/application"
	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/provider"
)

// Name identifies this variant in the provider registry
const Name = "github"

const (
	membersPerPage    = 100
	createFileMessage = "Create file"
)

func init() {
	provider.Register(Name, func(opts provider.Options) (provider.RepositoryProvider, error) {
		return New(opts)
	})
}

// Provider talks to GitHub on behalf of one organization.
type Provider struct {
	client *gh.Client
	org    string
	opts   provider.Options
}

var (
	_ provider.RepositoryProvider = (*Provider)(nil)
	_ provider.Inspector          = (*Provider)(nil)
)

// New returns a GitHub provider. BaseURL, when set, points at a GitHub
// Enterprise or test API root.
func New(opts provider.Options) (*Provider, error) {
	if opts.Token == "" {
		return nil, errors.New("github: token is required")
	}

	if opts.Organization == "" {
		return nil, errors.New("github: organization is required")
	}

	client := gh.NewClient(newHTTPClient(opts))
	client.UserAgent = application.UserAgent

	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github: parsing base URL: %w", err)
		}

		client.BaseURL = base
	}

	return &Provider{client: client, org: opts.Organization, opts: opts}, nil
}

// Name implements provider.RepositoryProvider
func (p *Provider) Name() string {
	return Name
}

// ResolveUser pages through the organization members looking for userName.
func (p *Provider) ResolveUser(ctx context.Context, userName string) (*model.RemoteUser, error) {
	opts := &gh.ListMembersOptions{ListOptions: gh.ListOptions{PerPage: membersPerPage}}

	for {
		members, resp, err := p.client.Organizations.ListMembers(ctx, p.org, opts)
		if err != nil {
			return nil, p.wrap("list members", resp, err)
		}

		for _, m := range members {
			if strings.EqualFold(m.GetLogin(), userName) {
				return &model.RemoteUser{ID: m.GetID(), UserName: m.GetLogin()}, nil
			}
		}

		if resp.NextPage == 0 {
			return nil, nil
		}

		opts.Page = resp.NextPage
	}
}

// CreateRemoteRepository creates a repository in the organization.
func (p *Provider) CreateRemoteRepository(ctx context.Context, name, description string, isPrivate bool) (*model.ProviderRepository, error) {
	repo, resp, err := p.client.Repositories.Create(ctx, p.org, &gh.Repository{
		Name:        gh.Ptr(name),
		Description: gh.Ptr(description),
		Private:     gh.Ptr(isPrivate),
	})
	if err != nil {
		return nil, p.wrap("create repository", resp, err)
	}

	p.opts.Log().Debug("github repository created", "repo", repo.GetFullName(), "id", repo.GetID())

	return toProviderRepository(repo), nil
}

// GetRemoteRepository fetches a repository by id, returning nil when it is gone.
func (p *Provider) GetRemoteRepository(ctx context.Context, providerRepositoryID string) (*model.ProviderRepository, error) {
	repo, err := p.getByID(ctx, providerRepositoryID)
	if provider.IsGone(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return toProviderRepository(repo), nil
}

// CreateFile resolves the repository by id and commits content at path.
func (p *Provider) CreateFile(ctx context.Context, providerRepositoryID, path string, content []byte) error {
	repo, err := p.getByID(ctx, providerRepositoryID)
	if err != nil {
		return err
	}

	_, resp, err := p.client.Repositories.CreateFile(ctx, repo.GetOwner().GetLogin(), repo.GetName(), path,
		&gh.RepositoryContentFileOptions{
			Message: gh.Ptr(createFileMessage),
			Content: content,
		})
	if err != nil {
		return p.wrap("create file "+path, resp, err)
	}

	return nil
}

// DeleteRemoteRepository deletes a repository by id.
func (p *Provider) DeleteRemoteRepository(ctx context.Context, providerRepositoryID string) error {
	id, err := parseID(providerRepositoryID)
	if err != nil {
		return err
	}

	req, err := p.client.NewRequest(http.MethodDelete, fmt.Sprintf("repositories/%d", id), nil)
	if err != nil {
		return fmt.Errorf("github: building delete request: %w", err)
	}

	resp, err := p.client.Do(ctx, req, nil)
	if err != nil {
		return p.wrap("delete repository", resp, err)
	}

	return nil
}

func (p *Provider) getByID(ctx context.Context, providerRepositoryID string) (*gh.Repository, error) {
	id, err := parseID(providerRepositoryID)
	if err != nil {
		return nil, err
	}

	repo, resp, err := p.client.Repositories.GetByID(ctx, id)
	if err != nil {
		return nil, p.wrap("get repository", resp, err)
	}

	return repo, nil
}

// wrap converts a go-github failure into a RemoteProviderError carrying the
// upstream status and message
func (p *Provider) wrap(operation string, resp *gh.Response, err error) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}

	message := ""

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) {
		message = errResp.Message
		if errResp.Response != nil {
			status = errResp.Response.StatusCode
		}
	}

	return provider.StatusError(Name, operation, status, message, err)
}

func parseID(providerRepositoryID string) (int64, error) {
	id, err := strconv.ParseInt(providerRepositoryID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("github: invalid repository id %q", providerRepositoryID)
	}

	return id, nil
}

func toProviderRepository(repo *gh.Repository) *model.ProviderRepository {
	return &model.ProviderRepository{
		ID:       strconv.FormatInt(repo.GetID(), 10),
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
		CloneURL: repo.GetCloneURL(),
		HTMLURL:  repo.GetHTMLURL(),
		Private:  repo.GetPrivate(),
	}
}
