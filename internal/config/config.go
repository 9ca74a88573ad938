// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// breachadvisor.
//
// Configuration sources, in order of precedence:
//   - Environment variables (BREACHADVISOR_*, HIBP_API_KEY)
//   - ~/.breachadvisor/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/breachadvisor/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete breachadvisor configuration.
type Config struct {
	// Ollama holds inference server settings.
	Ollama OllamaConfig `toml:"ollama"`

	// HIBP holds breach lookup settings.
	HIBP HIBPConfig `toml:"hibp"`
}

// OllamaConfig contains inference server configuration.
type OllamaConfig struct {
	// Endpoint is the full URL of the generate endpoint.
	Endpoint string `toml:"endpoint"`
	// Model is the model identifier to request.
	Model string `toml:"model"`
}

// HIBPConfig contains breach lookup configuration.
type HIBPConfig struct {
	// UserAgent identifies the application to the HIBP service, which
	// rejects requests without one.
	UserAgent string `toml:"user_agent"`
	// RequestsPerMinute throttles lookups client-side (0 = no throttle).
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// Default option values.
const (
	DefaultEndpoint  = "http://127.0.0.1:11434/api/generate"
	DefaultModel     = "phi4-mini"
	DefaultUserAgent = "breachadvisor (Go)"
)

// Default returns a Config with the built-in default values.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			Endpoint: DefaultEndpoint,
			Model:    DefaultModel,
		},
		HIBP: HIBPConfig{
			UserAgent:         DefaultUserAgent,
			RequestsPerMinute: 10,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the breachadvisor configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".breachadvisor"), nil
}

// ConfigPath returns the configuration file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads configuration from the default path, merged over defaults,
// with environment overrides applied last. A missing file is not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		// No resolvable home directory; run on defaults + env.
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.New("failed to parse config file " + path + ": " + err.Error())
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults replaces zero values with built-in defaults so a sparse
// config file behaves predictably.
func (c *Config) fillDefaults() {
	if c.Ollama.Endpoint == "" {
		c.Ollama.Endpoint = DefaultEndpoint
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = DefaultModel
	}
	if c.HIBP.UserAgent == "" {
		c.HIBP.UserAgent = DefaultUserAgent
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if endpoint := os.Getenv("BREACHADVISOR_OLLAMA_ENDPOINT"); endpoint != "" {
		c.Ollama.Endpoint = endpoint
	}
	if model := os.Getenv("BREACHADVISOR_OLLAMA_MODEL"); model != "" {
		c.Ollama.Model = model
	}
	if agent := os.Getenv("BREACHADVISOR_USER_AGENT"); agent != "" {
		c.HIBP.UserAgent = agent
	}
	if rpm := os.Getenv("BREACHADVISOR_HIBP_RPM"); rpm != "" {
		if n, err := strconv.Atoi(rpm); err == nil && n >= 0 {
			c.HIBP.RequestsPerMinute = n
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Ollama.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("ollama.endpoint is not a valid URL: " + c.Ollama.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("ollama.endpoint must be http or https")
	}
	if c.Ollama.Model == "" {
		return errors.New("ollama.model cannot be empty")
	}
	if c.HIBP.RequestsPerMinute < 0 {
		return errors.New("hibp.requests_per_minute cannot be negative")
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default path atomically.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific file path atomically.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}
