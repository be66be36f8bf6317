package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrNotConfigured is returned when no source yields a secret
var ErrNotConfigured = errors.New("not configured")

// Source indicates where a secret was found
type Source string

const (
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
	SourceCLI     Source = "cli"
	SourceNone    Source = "none"
)

// Result contains the resolved secret and its source
type Result struct {
	Value  string
	Source Source
	Name   string // the specific source name, e.g. "GITHUB_TOKEN" or "keyring:JWT_SECRET"
}

// SecretProvider attempts to provide a secret. It returns an empty value when
// it has nothing to offer; an error only for unexpected failures.
type SecretProvider func() (value string, source Source, name string, err error)

// Resolver resolves a secret from multiple sources in priority order
type Resolver struct {
	name        string
	providers   []SecretProvider
	helpMessage string
}

// NewResolver creates a resolver for the named secret
func NewResolver(name string) *Resolver {
	return &Resolver{
		name:      name,
		providers: make([]SecretProvider, 0),
	}
}

// WithEnv adds an environment variable as a source
func (r *Resolver) WithEnv(envVar string) *Resolver {
	return r.WithProvider(func() (string, Source, string, error) {
		if v := os.Getenv(envVar); v != "" {
			return v, SourceEnv, envVar, nil
		}

		return "", SourceNone, "", nil
	})
}

// WithEnvs adds multiple environment variables, checked in order
func (r *Resolver) WithEnvs(envVars ...string) *Resolver {
	for _, envVar := range envVars {
		r.WithEnv(envVar)
	}

	return r
}

// WithKeyring adds the OS keyring entry key as a source. An unavailable
// keyring is treated as an empty source.
func (r *Resolver) WithKeyring(key string) *Resolver {
	return r.WithProvider(func() (string, Source, string, error) {
		v, err := GetSecret(key)
		if err != nil {
			if !errors.Is(err, ErrSecretNotFound) {
				slog.Debug("keyring lookup failed", slog.String("key", key), slog.Any("error", err))
			}

			return "", SourceNone, "", nil
		}

		return v, SourceKeyring, "keyring:" + key, nil
	})
}

// WithProvider adds a custom source
func (r *Resolver) WithProvider(provider SecretProvider) *Resolver {
	r.providers = append(r.providers, provider)

	return r
}

// WithHelpMessage sets the help message shown when no source yields a value
func (r *Resolver) WithHelpMessage(msg string) *Resolver {
	r.helpMessage = msg

	return r
}

// Resolve returns the first non-empty value. The error wraps
// ErrNotConfigured when every source came up empty.
func (r *Resolver) Resolve() (*Result, error) {
	for _, provider := range r.providers {
		value, source, name, err := provider()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.name, err)
		}

		if value != "" {
			return &Result{Value: value, Source: source, Name: name}, nil
		}
	}

	if r.helpMessage != "" {
		return nil, fmt.Errorf("%s %w\n\n%s", r.name, ErrNotConfigured, r.helpMessage)
	}

	return nil, fmt.Errorf("%s %w", r.name, ErrNotConfigured)
}
