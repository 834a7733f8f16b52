// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.API.MaxRetries)
	}
	if cfg.API.RetryDelayMs != 1000 {
		t.Errorf("RetryDelayMs = %d, want 1000", cfg.API.RetryDelayMs)
	}
	if cfg.API.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want 30", cfg.API.TimeoutSecs)
	}
	if cfg.UI.InputCharLimit != 1000 {
		t.Errorf("InputCharLimit = %d, want 1000", cfg.UI.InputCharLimit)
	}
	if cfg.Search.MaxResults != 3 {
		t.Errorf("Search.MaxResults = %d, want 3", cfg.Search.MaxResults)
	}
	if err := func() error { cfg.applyDefaults(); return cfg.Validate() }(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[api]
base_url = "https://chat.example.com/v1"
max_tokens = 400

[ui]
input_char_limit = 500
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("ASTRO_CONFIG", path)
	t.Setenv("ASTRO_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://chat.example.com/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.MaxTokens != 400 {
		t.Errorf("MaxTokens = %d, want 400", cfg.API.MaxTokens)
	}
	if cfg.UI.InputCharLimit != 500 {
		t.Errorf("InputCharLimit = %d, want 500", cfg.UI.InputCharLimit)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.UI.Theme)
	}
	// Missing values fall back to defaults
	if cfg.API.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.API.MaxRetries)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ASTRO_CONFIG", filepath.Join(t.TempDir(), "nonexistent.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.MaxTokens != 800 {
		t.Errorf("MaxTokens = %d, want default 800", cfg.API.MaxTokens)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ASTRO_CONFIG", filepath.Join(t.TempDir(), "nonexistent.toml"))
	t.Setenv("ASTRO_API_KEY", "secret-key")
	t.Setenv("ASTRO_BASE_URL", "https://override.example.com")
	t.Setenv("ASTRO_MAX_TOKENS", "123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Key != "secret-key" {
		t.Errorf("Key = %q, want secret-key", cfg.API.Key)
	}
	if cfg.API.BaseURL != "https://override.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.MaxTokens != 123 {
		t.Errorf("MaxTokens = %d, want 123", cfg.API.MaxTokens)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero retries", func(c *Config) { c.API.MaxRetries = 0 }},
		{"too many retries", func(c *Config) { c.API.MaxRetries = 99 }},
		{"zero timeout", func(c *Config) { c.API.TimeoutSecs = 0 }},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"zero char limit", func(c *Config) { c.UI.InputCharLimit = 0 }},
		{"too many results", func(c *Config) { c.Search.MaxResults = 50 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.applyDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("ASTRO_CONFIG", path)
	t.Setenv("ASTRO_API_KEY", "")

	cfg := Default()
	cfg.applyDefaults()
	cfg.UI.Theme = "light"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("Theme = %q, want light", loaded.UI.Theme)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config perm = %v, want 0600", info.Mode().Perm())
	}
}
