// Package config handles configuration loading and validation for the
// portal client.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is where the backend listens when nothing else is
// configured.
const DefaultBaseURL = "http://localhost:8080"

// Config holds the application configuration.
type Config struct {
	API     APIConfig `yaml:"api"`
	DataDir string    `yaml:"-"` // set by caller, not from config file
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: 15,
		},
	}
}

// Load reads configuration from the given path and sets the data
// directory. If configPath is empty or doesn't exist, returns defaults
// with the provided dataDir. baseURL, when non-empty, overrides whatever
// the file says; it carries the flag/env value.
func Load(configPath, dataDir, baseURL string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = defaults.API.TimeoutSeconds
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		errs = errs.Append("api.base_url", fmt.Errorf("not a valid URL: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = errs.Append("api.base_url", fmt.Errorf("scheme must be http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = errs.Append("api.base_url", fmt.Errorf("missing host"))
	}

	if c.API.TimeoutSeconds < 1 || c.API.TimeoutSeconds > 120 {
		errs = errs.Append("api.timeout_seconds", fmt.Errorf("must be between 1 and 120, got %d", c.API.TimeoutSeconds))
	}

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("data directory cannot be empty"))
	}

	return errs.ToError()
}

// CredentialsFile returns the path to the persisted session record.
func (c *Config) CredentialsFile() string {
	return filepath.Join(c.DataDir, "credentials.json")
}
