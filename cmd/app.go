package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/inovacc/rael/internal/application"
	"github.com/inovacc/rael/internal/auth"
	"github.com/inovacc/rael/internal/config"
	"github.com/inovacc/rael/internal/core"
	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/provider"
	"github.com/inovacc/rael/internal/store"
	"github.com/inovacc/rael/internal/textgen"
	"github.com/inovacc/rael/internal/tokencache"

	// provider variants register themselves
	_ "github.com/inovacc/rael/internal/provider/gitea"
	_ "github.com/inovacc/rael/internal/provider/github"
)

// app is what a command needs once the configuration is loaded. It is built
// per command and closed when the command returns.
type app struct {
	cfg    *config.Config
	store  *store.Store
	cache  *tokencache.Store
	logger *slog.Logger
}

// appDir resolves the application directory: --config-dir, then RAEL_HOME,
// then the OS default
func appDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}

	if dir := os.Getenv("RAEL_HOME"); dir != "" {
		return dir, nil
	}

	return application.GetApplicationDirectory()
}

func loadConfig() (*config.Config, error) {
	dir, err := appDir()
	if err != nil {
		return nil, fmt.Errorf("resolving application directory: %w", err)
	}

	return config.Load(dir)
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating application directory: %w", err)
	}

	st, err := store.Open(cfg.DatabasePath, cfg.JournalPath)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		store:  st,
		cache:  tokencache.New(filepath.Join(cfg.Dir, application.TokenFileName)),
		logger: slog.Default(),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) tokens() (*auth.Tokens, error) {
	secret, err := a.cfg.SigningSecret()
	if err != nil {
		return nil, err
	}

	return auth.NewTokens(secret, a.store.Identities())
}

func (a *app) session() (*auth.Session, error) {
	tokens, err := a.tokens()
	if err != nil {
		return nil, err
	}

	return auth.NewSession(a.cache, tokens), nil
}

// provider builds the configured variant
func (a *app) provider() (provider.RepositoryProvider, error) {
	token, err := a.cfg.ProviderToken()
	if err != nil {
		return nil, err
	}

	a.logger.Debug("provider token resolved", slog.String("source", string(token.Source)), slog.String("from", token.Name))

	opts := provider.Options{
		Token:        token.Value,
		Organization: a.cfg.Organization,
		Timeout:      a.cfg.RequestTimeout,
		Logger:       a.logger,
	}

	if a.cfg.Provider == "gitea" {
		opts.BaseURL = a.cfg.GiteaURL
	}

	return provider.New(a.cfg.Provider, opts)
}

// generator returns nil when no key is configured
func (a *app) generator() textgen.Generator {
	key := a.cfg.OpenAIToken()
	if key == "" {
		return nil
	}

	g, err := textgen.New(textgen.Config{APIKey: key, Model: a.cfg.OpenAIModel})
	if err != nil {
		a.logger.Warn("text generation disabled", slog.Any("error", err))
		return nil
	}

	return g
}

// workflows authenticates the caller before building the orchestrator, so a
// missing login is reported ahead of any provider configuration problem.
func (a *app) workflows(ctx context.Context) (*core.Orchestrator, *auth.Session, *model.Identity, error) {
	session, err := a.session()
	if err != nil {
		return nil, nil, nil, err
	}

	identity, err := session.Identity(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	p, err := a.provider()
	if err != nil {
		return nil, nil, nil, err
	}

	return core.New(p, a.store.Repositories(), a.store.Journal(), a.generator(), a.logger), session, identity, nil
}

// withApp opens the application for the duration of fn
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	defer func() { _ = a.Close() }()

	return fn(a)
}
