package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.API.TimeoutSeconds)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "api:\n  base_url: https://portal.example.com\n  timeout_seconds: 30\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, dir, "")
	require.NoError(t, err)

	assert.Equal(t, "https://portal.example.com", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
}

func TestLoad_FlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://from-file\n"), 0o644))

	cfg, err := Load(path, dir, "https://from-flag.example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://from-flag.example.com", cfg.API.BaseURL)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://example.com" }, "api.base_url"},
		{"missing host", func(c *Config) { c.API.BaseURL = "http://" }, "api.base_url"},
		{"timeout too small", func(c *Config) { c.API.TimeoutSeconds = 0 }, "api.timeout_seconds"},
		{"timeout too large", func(c *Config) { c.API.TimeoutSeconds = 600 }, "api.timeout_seconds"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var fieldErrs criterio.FieldErrors
			require.True(t, errors.As(err, &fieldErrs))
			assert.Equal(t, tt.wantField, fieldErrs[0].Field)
		})
	}
}

func TestCredentialsFile(t *testing.T) {
	cfg := Config{DataDir: "/data/marin"}
	assert.Equal(t, filepath.Join("/data/marin", "credentials.json"), cfg.CredentialsFile())
}
