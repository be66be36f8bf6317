// Package config loads rael settings and resolves its secrets.
//
// Non-secret settings come from config.yaml in the application directory
// and are overridden by environment variables. Secrets never live in the
// file; each is resolved from the environment, then the OS keyring, and for
// the GitHub token finally from the gh CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cli/go-gh/v2/pkg/auth"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the settings file inside the application directory
const FileName = "config.yaml"

// Secret names double as environment variables and keyring keys
const (
	SecretGitHubToken        = "GITHUB_TOKEN"
	SecretGiteaToken         = "GITEA_TOKEN"
	SecretSigningKey         = "JWT_SECRET"
	SecretGoogleClientID     = "GOOGLE_CLIENT_ID"
	SecretGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	SecretOpenAIToken        = "OPENAI_TOKEN"
)

// Secrets lists every secret name accepted by SetSecret callers
var Secrets = []string{
	SecretGitHubToken,
	SecretGiteaToken,
	SecretSigningKey,
	SecretGoogleClientID,
	SecretGoogleClientSecret,
	SecretOpenAIToken,
}

const (
	defaultProvider       = "github"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultCallbackPort   = 8080
	defaultCallbackPath   = "/api/auth/google/callback"
	defaultLoginTimeout   = 5 * time.Minute
	defaultRequestTimeout = 30 * time.Second
	githubHost            = "github.com"
)

// ghTokenForHost is swapped in tests so they never read the real gh config
var ghTokenForHost = auth.TokenForHost

// Config holds the non-secret settings
type Config struct {
	// Provider selects the remote provider variant ("github" or "gitea")
	Provider string `yaml:"provider"`

	// Organization scopes member lookups and repository creation
	Organization string `yaml:"organization"`

	// GiteaURL is the base URL of the Gitea instance
	GiteaURL string `yaml:"gitea_url,omitempty"`

	OpenAIModel string `yaml:"openai_model"`

	DatabasePath string `yaml:"database"`
	JournalPath  string `yaml:"journal"`

	// CallbackPort and CallbackPath locate the OAuth loopback listener
	CallbackPort int    `yaml:"callback_port"`
	CallbackPath string `yaml:"callback_path"`

	LoginTimeout   time.Duration `yaml:"login_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Dir is the application directory the config was loaded from
	Dir string `yaml:"-"`
}

// Default returns the settings used when neither file nor environment say otherwise
func Default(dir string) *Config {
	return &Config{
		Provider:       defaultProvider,
		OpenAIModel:    defaultOpenAIModel,
		DatabasePath:   filepath.Join(dir, "rael.db"),
		JournalPath:    filepath.Join(dir, "reconcile.bolt"),
		CallbackPort:   defaultCallbackPort,
		CallbackPath:   defaultCallbackPath,
		LoginTimeout:   defaultLoginTimeout,
		RequestTimeout: defaultRequestTimeout,
		Dir:            dir,
	}
}

// Load reads dir/config.yaml when present and applies environment overrides.
func Load(dir string) (*Config, error) {
	cfg := Default(dir)

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the non-secret settings to dir/config.yaml
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	return os.WriteFile(filepath.Join(c.Dir, FileName), data, 0o600)
}

func (c *Config) applyEnv() error {
	c.Provider = envOrDefault("RAEL_PROVIDER", c.Provider)
	c.Organization = envOrDefault("RAEL_ORG", envOrDefault("GITHUB_ORG_NAME", c.Organization))
	c.GiteaURL = envOrDefault("GITEA_URL", c.GiteaURL)
	c.OpenAIModel = envOrDefault("RAEL_OPENAI_MODEL", c.OpenAIModel)
	c.DatabasePath = envOrDefault("RAEL_DATABASE", c.DatabasePath)
	c.JournalPath = envOrDefault("RAEL_JOURNAL", c.JournalPath)

	if v := os.Getenv("RAEL_CALLBACK_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RAEL_CALLBACK_PORT: %w", err)
		}

		c.CallbackPort = port
	}

	for env, target := range map[string]*time.Duration{
		"RAEL_LOGIN_TIMEOUT":   &c.LoginTimeout,
		"RAEL_REQUEST_TIMEOUT": &c.RequestTimeout,
	} {
		if v := os.Getenv(env); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}

			*target = d
		}
	}

	return nil
}

// Validate checks the settings for values no component can work with
func (c *Config) Validate() error {
	if c.CallbackPort < 0 || c.CallbackPort > 65535 {
		return fmt.Errorf("callback port %d out of range", c.CallbackPort)
	}

	if c.LoginTimeout <= 0 {
		return fmt.Errorf("login timeout must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	return nil
}

// ProviderToken resolves the access token of the configured provider
func (c *Config) ProviderToken() (*Result, error) {
	if c.Provider == "gitea" {
		return NewResolver(SecretGiteaToken).
			WithEnv(SecretGiteaToken).
			WithKeyring(SecretGiteaToken).
			WithHelpMessage("Set GITEA_TOKEN or run: rael config set-secret GITEA_TOKEN").
			Resolve()
	}

	return NewResolver(SecretGitHubToken).
		WithEnvs(SecretGitHubToken, "GH_TOKEN").
		WithKeyring(SecretGitHubToken).
		WithProvider(func() (string, Source, string, error) {
			token, _ := ghTokenForHost(githubHost)
			return token, SourceCLI, "cli:gh", nil
		}).
		WithHelpMessage(`Provide a token via one of:
  * gh auth login             (auto-detected from gh CLI)
  * GITHUB_TOKEN env var
  * rael config set-secret GITHUB_TOKEN`).
		Resolve()
}

// SigningSecret resolves the key used to sign and verify tokens
func (c *Config) SigningSecret() (string, error) {
	return resolveSecret(SecretSigningKey)
}

// GoogleClient resolves the OAuth client credentials
func (c *Config) GoogleClient() (clientID, clientSecret string, err error) {
	if clientID, err = resolveSecret(SecretGoogleClientID); err != nil {
		return "", "", err
	}

	if clientSecret, err = resolveSecret(SecretGoogleClientSecret); err != nil {
		return "", "", err
	}

	return clientID, clientSecret, nil
}

// OpenAIToken returns the text generation API key, or "" when none is set
func (c *Config) OpenAIToken() string {
	v, err := resolveSecret(SecretOpenAIToken)
	if err != nil {
		return ""
	}

	return v
}

func resolveSecret(name string) (string, error) {
	res, err := NewResolver(name).WithEnv(name).WithKeyring(name).Resolve()
	if err != nil {
		return "", err
	}

	return res.Value, nil
}

// envOrDefault returns the value of an environment variable or a default
func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}
