// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates scholar's TOML configuration.
//
// Resolution order: defaults, then ~/.scholar/config.toml, then SCHOLAR_*
// environment variables. A missing file is fine; defaults apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// configFile is the filename inside the scholar directory.
const configFile = "config.toml"

// Config is the full scholar configuration.
type Config struct {
	// Server is the Scholar backend base URL.
	Server ServerConfig `toml:"server"`

	// UI holds terminal presentation options.
	UI UIConfig `toml:"ui"`
}

// ServerConfig configures the backend connection.
type ServerConfig struct {
	URL            string  `toml:"url"`
	TimeoutSecs    int     `toml:"timeout_secs"`
	MaxRetries     int     `toml:"max_retries"`
	RateLimitRPS   float64 `toml:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst"`
}

// UIConfig configures the TUI.
type UIConfig struct {
	// Theme is "auto", "dark", or "light".
	Theme string `toml:"theme"`

	// Markdown enables glamour rendering of finished assistant replies.
	Markdown bool `toml:"markdown"`

	// ShowTimestamps prefixes messages with their time.
	ShowTimestamps bool `toml:"show_timestamps"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            "http://localhost:8000",
			TimeoutSecs:    30,
			MaxRetries:     3,
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},
	}
}

// Dir returns the scholar configuration directory (~/.scholar).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".scholar"), nil
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file at path, layering it over defaults and under
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays SCHOLAR_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("SCHOLAR_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("SCHOLAR_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("SCHOLAR_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.MaxRetries = n
		}
	}
	if v := os.Getenv("SCHOLAR_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// Validate checks the configuration for nonsense values.
func (c *Config) Validate() error {
	url := strings.TrimSpace(c.Server.URL)
	if url == "" {
		return fmt.Errorf("server.url must not be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("server.url must start with http:// or https://, got %q", url)
	}
	if c.Server.TimeoutSecs <= 0 {
		return fmt.Errorf("server.timeout_secs must be positive, got %d", c.Server.TimeoutSecs)
	}
	if c.Server.MaxRetries < 1 || c.Server.MaxRetries > 10 {
		return fmt.Errorf("server.max_retries must be between 1 and 10, got %d", c.Server.MaxRetries)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("server.rate_limit_rps must be positive")
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		return fmt.Errorf("ui.theme must be auto, dark, or light, got %q", c.UI.Theme)
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalConfig *Config
	globalOnce   sync.Once
)

// Global returns the process-wide configuration, loading it on first use.
// Load failures fall back to defaults; the CLI reports them separately.
func Global() *Config {
	globalOnce.Do(func() {
		path, err := DefaultPath()
		if err != nil {
			globalConfig = Default()
			return
		}
		cfg, err := Load(path)
		if err != nil {
			globalConfig = Default()
			return
		}
		globalConfig = cfg
	})
	return globalConfig
}
