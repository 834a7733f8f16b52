// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// astro-tui.
//
// Supports TOML configuration with sensible defaults and environment
// variable overrides.
//
// Configuration file locations (in order of precedence):
//   - ASTRO_CONFIG environment variable
//   - ~/.astro/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/astro-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete astro-tui configuration.
type Config struct {
	Version string `toml:"version"`

	// API configuration
	API APIConfig `toml:"api"`

	// Search configuration
	Search SearchConfig `toml:"search"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`
}

// APIConfig contains chat endpoint configuration.
type APIConfig struct {
	// BaseURL is the chat API base URL
	BaseURL string `toml:"base_url"`
	// Key is the API bearer token (usually set via ASTRO_API_KEY)
	Key string `toml:"key"`
	// MaxTokens caps the response length requested from the model
	MaxTokens int `toml:"max_tokens"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries is the attempt cap for transient failures
	MaxRetries int `toml:"max_retries"`
	// RetryDelayMs is the fixed delay between attempts in milliseconds
	RetryDelayMs int `toml:"retry_delay_ms"`
	// RequestsPerSec paces outbound requests client-side (0 = unpaced)
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// SearchConfig contains search augmentation configuration.
type SearchConfig struct {
	// BaseURL is the search API base URL
	BaseURL string `toml:"base_url"`
	// MaxResults is the number of snippets fetched per query
	MaxResults int `toml:"max_results"`
	// Enabled is the startup default for the search toggle
	Enabled bool `toml:"enabled"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// InputCharLimit is the hard character cap on the input box
	InputCharLimit int `toml:"input_char_limit"`
	// Theme selects the glamour rendering style ("dark" or "light")
	Theme string `toml:"theme"`
	// ShowTimestamps toggles per-message timestamps
	ShowTimestamps bool `toml:"show_timestamps"`
}

// StorageConfig contains on-disk state configuration.
type StorageConfig struct {
	// DataDir is the directory for persisted state
	// Default: ~/.astro
	DataDir string `toml:"data_dir"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:        "https://api.astroai.example/v1",
			MaxTokens:      800,
			TimeoutSecs:    30,
			MaxRetries:     3,
			RetryDelayMs:   1000,
			RequestsPerSec: 2,
		},
		Search: SearchConfig{
			BaseURL:    "https://search.astroai.example/v1",
			MaxResults: 3,
			Enabled:    false,
		},
		UI: UIConfig{
			InputCharLimit: 1000,
			Theme:          "dark",
			ShowTimestamps: false,
		},
		Storage: StorageConfig{},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from disk, applying defaults for missing values
// and environment variable overrides on top.
func Load() (*Config, error) {
	cfg := Default()

	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default location.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Config may contain the API key, keep it user-only
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("ASTRO_API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("ASTRO_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("ASTRO_SEARCH_URL"); v != "" {
		c.Search.BaseURL = v
	}
	if v := os.Getenv("ASTRO_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("ASTRO_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.API.MaxTokens = n
		}
	}
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.MaxTokens == 0 {
		c.API.MaxTokens = def.API.MaxTokens
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = def.API.MaxRetries
	}
	if c.API.RetryDelayMs == 0 {
		c.API.RetryDelayMs = def.API.RetryDelayMs
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = def.Search.BaseURL
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = def.Search.MaxResults
	}
	if c.UI.InputCharLimit == 0 {
		c.UI.InputCharLimit = def.UI.InputCharLimit
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.Storage.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Storage.DataDir = filepath.Join(home, ".astro")
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := url.Parse(c.API.BaseURL); err != nil {
		return fmt.Errorf("invalid api.base_url: %w", err)
	}
	if c.API.MaxRetries < 1 || c.API.MaxRetries > 10 {
		return errors.New("api.max_retries must be between 1 and 10")
	}
	if c.API.TimeoutSecs < 1 {
		return errors.New("api.timeout_secs must be positive")
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 10 {
		return errors.New("search.max_results must be between 1 and 10")
	}
	if c.UI.InputCharLimit < 1 {
		return errors.New("ui.input_char_limit must be positive")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns the per-request timeout as a duration.
func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RetryDelay returns the fixed retry delay as a duration.
func (c *APIConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// =============================================================================
// PATHS
// =============================================================================

// configPath returns the config file location.
func configPath() (string, error) {
	if p := os.Getenv("ASTRO_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".astro", "config.toml"), nil
}
