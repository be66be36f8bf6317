// Package gitea implements the repository provider backed by the Gitea
// REST API (v1), for self-hosted installations.
package gitea

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/inovacc/rael/internal/application"
	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/provider"
)

// Name identifies this variant in the provider registry
const Name = "gitea"

const (
	apiPrefix         = "/api/v1"
	membersPerPage    = 50
	createFileMessage = "Create file"
	retryCount        = 3
	retryWait         = 200 * time.Millisecond
	retryMaxWait      = 2 * time.Second
)

func init() {
	provider.Register(Name, func(opts provider.Options) (provider.RepositoryProvider, error) {
		return New(opts)
	})
}

type apiUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

type apiRepository struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	FullName string  `json:"full_name"`
	CloneURL string  `json:"clone_url"`
	HTMLURL  string  `json:"html_url"`
	Private  bool    `json:"private"`
	Owner    apiUser `json:"owner"`
}

type apiError struct {
	Message string `json:"message"`
}

// Provider talks to a Gitea instance on behalf of one organization.
type Provider struct {
	client *resty.Client
	org    string
	logger *slog.Logger
}

var (
	_ provider.RepositoryProvider = (*Provider)(nil)
	_ provider.Inspector          = (*Provider)(nil)
)

// New returns a Gitea provider for the instance at opts.BaseURL.
func New(opts provider.Options) (*Provider, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("gitea: base URL is required")
	}

	if opts.Token == "" {
		return nil, errors.New("gitea: token is required")
	}

	if opts.Organization == "" {
		return nil, errors.New("gitea: organization is required")
	}

	client := resty.New().
		SetTransport(opts.BaseTransport()).
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")+apiPrefix).
		SetTimeout(opts.RequestTimeout()).
		SetHeader("User-Agent", application.UserAgent).
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "token "+opts.Token).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryMaxWait).
		AddRetryCondition(retryIdempotent).
		SetLogger(restyLogger{opts.Log()})

	return &Provider{client: client, org: opts.Organization, logger: opts.Log()}, nil
}

// retryIdempotent retries GETs on transport errors and 5xx responses only
func retryIdempotent(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}

	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

// Name implements provider.RepositoryProvider
func (p *Provider) Name() string {
	return Name
}

// ResolveUser pages through the organization members looking for userName.
func (p *Provider) ResolveUser(ctx context.Context, userName string) (*model.RemoteUser, error) {
	for page := 1; ; page++ {
		var members []apiUser

		resp, err := p.client.R().
			SetContext(ctx).
			SetPathParam("org", p.org).
			SetQueryParam("page", strconv.Itoa(page)).
			SetQueryParam("limit", strconv.Itoa(membersPerPage)).
			SetResult(&members).
			SetError(&apiError{}).
			Get("/orgs/{org}/members")
		if err := check("list members", resp, err); err != nil {
			return nil, err
		}

		for _, m := range members {
			if strings.EqualFold(m.Login, userName) {
				return &model.RemoteUser{ID: m.ID, UserName: m.Login}, nil
			}
		}

		if len(members) < membersPerPage {
			return nil, nil
		}
	}
}

// CreateRemoteRepository creates a repository in the organization.
func (p *Provider) CreateRemoteRepository(ctx context.Context, name, description string, isPrivate bool) (*model.ProviderRepository, error) {
	var repo apiRepository

	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("org", p.org).
		SetBody(map[string]any{
			"name":        name,
			"description": description,
			"private":     isPrivate,
		}).
		SetResult(&repo).
		SetError(&apiError{}).
		Post("/orgs/{org}/repos")
	if err := check("create repository", resp, err); err != nil {
		return nil, err
	}

	p.logger.Debug("gitea repository created", slog.String("repo", repo.FullName), slog.Int64("id", repo.ID))

	return repo.toModel(), nil
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

	return repo.toModel(), nil
}

// CreateFile resolves the repository by id and commits content at path.
func (p *Provider) CreateFile(ctx context.Context, providerRepositoryID, path string, content []byte) error {
	repo, err := p.getByID(ctx, providerRepositoryID)
	if err != nil {
		return err
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"owner": repo.Owner.Login, "repo": repo.Name}).
		SetBody(map[string]string{
			"message": createFileMessage,
			"content": base64.StdEncoding.EncodeToString(content),
		}).
		SetError(&apiError{}).
		Post("/repos/{owner}/{repo}/contents/" + strings.TrimPrefix(path, "/"))

	return check("create file "+path, resp, err)
}

// DeleteRemoteRepository resolves the repository by id and deletes it.
func (p *Provider) DeleteRemoteRepository(ctx context.Context, providerRepositoryID string) error {
	repo, err := p.getByID(ctx, providerRepositoryID)
	if err != nil {
		return err
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"owner": repo.Owner.Login, "repo": repo.Name}).
		SetError(&apiError{}).
		Delete("/repos/{owner}/{repo}")

	return check("delete repository", resp, err)
}

func (p *Provider) getByID(ctx context.Context, providerRepositoryID string) (*apiRepository, error) {
	if _, err := strconv.ParseInt(providerRepositoryID, 10, 64); err != nil {
		return nil, fmt.Errorf("gitea: invalid repository id %q", providerRepositoryID)
	}

	var repo apiRepository

	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("id", providerRepositoryID).
		SetResult(&repo).
		SetError(&apiError{}).
		Get("/repositories/{id}")
	if err := check("get repository", resp, err); err != nil {
		return nil, err
	}

	return &repo, nil
}

// check converts a transport failure or non-2xx response into a RemoteProviderError
func check(operation string, resp *resty.Response, err error) error {
	if err != nil {
		status := 0
		if resp != nil && resp.RawResponse != nil {
			status = resp.StatusCode()
		}

		return provider.StatusError(Name, operation, status, "", err)
	}

	if !resp.IsError() {
		return nil
	}

	message := ""
	if apiErr, ok := resp.Error().(*apiError); ok {
		message = apiErr.Message
	}

	return provider.StatusError(Name, operation, resp.StatusCode(), message, nil)
}

func (r *apiRepository) toModel() *model.ProviderRepository {
	return &model.ProviderRepository{
		ID:       strconv.FormatInt(r.ID, 10),
		Name:     r.Name,
		FullName: r.FullName,
		CloneURL: r.CloneURL,
		HTMLURL:  r.HTMLURL,
		Private:  r.Private,
	}
}

// restyLogger routes resty's printf-style logging into slog
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), slog.String("component", "gitea"))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), slog.String("component", "gitea"))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "gitea"))
}
