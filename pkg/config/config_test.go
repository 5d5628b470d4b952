package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ATTENDO_HOME", t.TempDir())
	for _, key := range []string{"ATTENDO_API_URL", "ATTENDO_WEB_URL", "ATTENDO_TOKEN", "ATTENDO_TOKEN_TTL", "ATTENDO_HTTP_TIMEOUT", "ATTENDO_LOG_LEVEL", "API_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key) //nolint:errcheck // restored by t.Setenv cleanup
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultWebURL, cfg.WebURL)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Token)
}

func TestFromEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ATTENDO_HOME", home)
	t.Setenv("ATTENDO_API_URL", "http://localhost:5000/api/")
	t.Setenv("ATTENDO_TOKEN", "tok")
	t.Setenv("ATTENDO_TOKEN_TTL", "1h")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL, "trailing slash is trimmed")
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, filepath.Join(home, "credentials.json"), cfg.CredentialsPath())
	assert.Equal(t, filepath.Join(home, "attendo.log"), cfg.LogPath())
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"relative api url", "ATTENDO_API_URL", "/api"},
		{"zero ttl", "ATTENDO_TOKEN_TTL", "0s"},
		{"unparseable timeout", "ATTENDO_HTTP_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ATTENDO_HOME", t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
