// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags or environment variables.
type Config struct {
	// Companion application
	RelayEndpoint string `json:"relay_endpoint,omitempty" validate:"omitempty,url"` // Capture delivery endpoint
	ProbeEndpoint string `json:"probe_endpoint,omitempty" validate:"omitempty,url"` // Connectivity probe endpoint
	RelaySecret   string `json:"relay_secret,omitempty"`                            // Shared secret for signed delivery tokens

	// Browser attachment
	BrowserURL string `json:"browser_url,omitempty" validate:"omitempty,url"` // DevTools endpoint of the user's running browser

	// Fallback queue
	RedisURL string `json:"redis_url,omitempty"` // Redis URL for the durable queue backend; empty selects the in-memory backend
	QueueKey string `json:"queue_key,omitempty"` // Redis list key
	QueueCap int    `json:"queue_cap,omitempty" validate:"omitempty,gt=0"`

	// Capture timing
	InitialDelayMs int `json:"initial_delay_ms,omitempty" validate:"omitempty,gt=0"`
	RetryDelayMs   int `json:"retry_delay_ms,omitempty" validate:"omitempty,gt=0"`
	DebounceMs     int `json:"debounce_ms,omitempty" validate:"omitempty,gt=0"`
	MaxRetries     int `json:"max_retries,omitempty" validate:"omitempty,gte=0"`

	// Behavior
	SettingsPath string `json:"settings_path,omitempty"` // Path to the persisted enable/disable flag
	Verbose      bool   `json:"verbose,omitempty"`       // Print detailed debug information
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		RelayEndpoint:  "http://127.0.0.1:8750/api/captures",
		ProbeEndpoint:  "http://127.0.0.1:8750/api/health",
		BrowserURL:     "http://127.0.0.1:9222",
		QueueCap:       50,
		InitialDelayMs: 1500,
		RetryDelayMs:   800,
		DebounceMs:     300,
		MaxRetries:     5,
		SettingsPath:   defaultSettingsPath(),
	}
}

func defaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "jobwatch_settings.json"
	}
	return filepath.Join(home, ".jobwatch", "settings.json")
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills settings that commonly come from the environment.
func (c *Config) FromEnv() {
	if c.RelayEndpoint == "" {
		c.RelayEndpoint = os.Getenv("JOBWATCH_RELAY_ENDPOINT")
	}
	if c.RelaySecret == "" {
		c.RelaySecret = os.Getenv("JOBWATCH_RELAY_SECRET")
	}
	if c.RedisURL == "" {
		c.RedisURL = os.Getenv("JOBWATCH_REDIS_URL")
	}
	if c.BrowserURL == "" {
		c.BrowserURL = os.Getenv("JOBWATCH_BROWSER_URL")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: field %s failed %s validation", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.RelayEndpoint == "" {
		result.RelayEndpoint = defaults.RelayEndpoint
	}
	if result.ProbeEndpoint == "" {
		result.ProbeEndpoint = defaults.ProbeEndpoint
	}
	if result.RelaySecret == "" {
		result.RelaySecret = defaults.RelaySecret
	}
	if result.BrowserURL == "" {
		result.BrowserURL = defaults.BrowserURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.QueueKey == "" {
		result.QueueKey = defaults.QueueKey
	}
	if result.SettingsPath == "" {
		result.SettingsPath = defaults.SettingsPath
	}

	// Int fields: use default if zero
	if result.QueueCap == 0 {
		result.QueueCap = defaults.QueueCap
	}
	if result.InitialDelayMs == 0 {
		result.InitialDelayMs = defaults.InitialDelayMs
	}
	if result.RetryDelayMs == 0 {
		result.RetryDelayMs = defaults.RetryDelayMs
	}
	if result.DebounceMs == 0 {
		result.DebounceMs = defaults.DebounceMs
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
