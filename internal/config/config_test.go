package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range append([]string{
		"RAEL_PROVIDER", "RAEL_ORG", "GITHUB_ORG_NAME", "GITEA_URL", "RAEL_OPENAI_MODEL",
		"RAEL_DATABASE", "RAEL_JOURNAL", "RAEL_CALLBACK_PORT", "RAEL_LOGIN_TIMEOUT",
		"RAEL_REQUEST_TIMEOUT", "GH_TOKEN",
	}, Secrets...) {
		t.Setenv(key, "")
	}
}

func withoutGH(t *testing.T) {
	t.Helper()

	orig := ghTokenForHost
	ghTokenForHost = func(string) (string, string) { return "", "" }

	t.Cleanup(func() { ghTokenForHost = orig })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "github", cfg.Provider)
	assert.Equal(t, 8080, cfg.CallbackPort)
	assert.Equal(t, "/api/auth/google/callback", cfg.CallbackPath)
	assert.Equal(t, 5*time.Minute, cfg.LoginTimeout)
	assert.Equal(t, filepath.Join(dir, "rael.db"), cfg.DatabasePath)
	assert.Equal(t, filepath.Join(dir, "reconcile.bolt"), cfg.JournalPath)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	content := `provider: gitea
organization: from-file
gitea_url: https://gitea.example.com
callback_port: 9090
login_timeout: 2m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))

	t.Setenv("GITHUB_ORG_NAME", "from-env")
	t.Setenv("RAEL_REQUEST_TIMEOUT", "10s")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "gitea", cfg.Provider)
	assert.Equal(t, "from-env", cfg.Organization)
	assert.Equal(t, "https://gitea.example.com", cfg.GiteaURL)
	assert.Equal(t, 9090, cfg.CallbackPort)
	assert.Equal(t, 2*time.Minute, cfg.LoginTimeout)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "bad port", env: map[string]string{"RAEL_CALLBACK_PORT": "http"}},
		{name: "port out of range", env: map[string]string{"RAEL_CALLBACK_PORT": "70000"}},
		{name: "bad duration", env: map[string]string{"RAEL_LOGIN_TIMEOUT": "soon"}},
		{name: "bad yaml", file: "provider: [github"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)

			dir := t.TempDir()
			if tt.file != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.file), 0o600))
			}

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	cfg := Default(dir)
	cfg.Organization = "acme"

	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "acme", loaded.Organization)
}

func TestProviderToken_Priority(t *testing.T) {
	keyring.MockInit()
	withoutGH(t)

	cfg := Default(t.TempDir())

	t.Run("missing everywhere", func(t *testing.T) {
		clearEnv(t)

		_, err := cfg.ProviderToken()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotConfigured))
	})

	t.Run("keyring", func(t *testing.T) {
		clearEnv(t)
		require.NoError(t, SetSecret(SecretGitHubToken, "from-keyring"))

		t.Cleanup(func() { _ = DeleteSecret(SecretGitHubToken) })

		res, err := cfg.ProviderToken()
		require.NoError(t, err)
		assert.Equal(t, "from-keyring", res.Value)
		assert.Equal(t, SourceKeyring, res.Source)
	})

	t.Run("env wins over keyring", func(t *testing.T) {
		clearEnv(t)
		require.NoError(t, SetSecret(SecretGitHubToken, "from-keyring"))

		t.Cleanup(func() { _ = DeleteSecret(SecretGitHubToken) })
		t.Setenv(SecretGitHubToken, "from-env")

		res, err := cfg.ProviderToken()
		require.NoError(t, err)
		assert.Equal(t, "from-env", res.Value)
		assert.Equal(t, SourceEnv, res.Source)
	})

	t.Run("gh cli last", func(t *testing.T) {
		clearEnv(t)

		ghTokenForHost = func(host string) (string, string) {
			assert.Equal(t, "github.com", host)
			return "from-gh", "oauth_token"
		}

		res, err := cfg.ProviderToken()
		require.NoError(t, err)
		assert.Equal(t, "from-gh", res.Value)
		assert.Equal(t, SourceCLI, res.Source)
	})
}

func TestProviderToken_Gitea(t *testing.T) {
	keyring.MockInit()
	clearEnv(t)

	cfg := Default(t.TempDir())
	cfg.Provider = "gitea"

	t.Setenv(SecretGitHubToken, "ignored")
	t.Setenv(SecretGiteaToken, "gitea-token")

	res, err := cfg.ProviderToken()
	require.NoError(t, err)
	assert.Equal(t, "gitea-token", res.Value)
}

func TestSecrets(t *testing.T) {
	keyring.MockInit()
	clearEnv(t)

	cfg := Default(t.TempDir())

	_, err := cfg.SigningSecret()
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, cfg.OpenAIToken())

	t.Setenv(SecretSigningKey, "s3cret")
	t.Setenv(SecretGoogleClientID, "client")
	require.NoError(t, SetSecret(SecretGoogleClientSecret, "shh"))

	secret, err := cfg.SigningSecret()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)

	id, clientSecret, err := cfg.GoogleClient()
	require.NoError(t, err)
	assert.Equal(t, "client", id)
	assert.Equal(t, "shh", clientSecret)
}

func TestKeyring(t *testing.T) {
	keyring.MockInit()

	_, err := GetSecret("absent")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	require.NoError(t, SetSecret("k", "v"))

	v, err := GetSecret("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, DeleteSecret("k"))
	require.NoError(t, DeleteSecret("k"))
}
