// Package file provides file-based configuration: the TOML config file
// and the static correction table.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration, loaded from TOML.
type Config struct {
	// Store configures the library store backend.
	Store StoreConfig `toml:"store"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `toml:"embedding"`

	// Server configures the HTTP API.
	Server ServerConfig `toml:"server"`

	// CorrectionsPath points at the correction table file. Empty means
	// no corrections.
	CorrectionsPath string `toml:"corrections_path"`
}

// StoreConfig selects and configures the store backend.
type StoreConfig struct {
	// Backend is one of "qdrant", "sqlite" or "memory".
	Backend string `toml:"backend"`

	// URL is the backend base URL (qdrant).
	URL string `toml:"url"`

	// APIKey authenticates against the backend (qdrant).
	APIKey string `toml:"api_key"`

	// CollectionPrefix namespaces collections on a shared server (qdrant).
	CollectionPrefix string `toml:"collection_prefix"`

	// DataDir is the local data directory (sqlite).
	DataDir string `toml:"data_dir"`

	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerSecond caps the backend request rate (qdrant).
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// ServerSideFilters declares whether the backend applies payload
	// filters inside similarity queries (qdrant; older versions
	// silently no-op them).
	ServerSideFilters bool `toml:"server_side_filters"`
}

// Timeout returns the configured timeout as a duration.
func (c StoreConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "openai", "ollama" or "none".
	Provider string `toml:"provider"`

	// APIKey authenticates against the provider (openai).
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions overrides the model's vector size.
	Dimensions int `toml:"dimensions"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default: 127.0.0.1:8720).
	Addr string `toml:"addr"`
}

// DefaultDir returns the default configuration directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".alexandria"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:           "sqlite",
			URL:               "http://localhost:6333",
			TimeoutSeconds:    15,
			RequestsPerSecond: 20,
			ServerSideFilters: true,
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8720",
		},
	}
}

// Load reads the config file at path, falling back to
// <DefaultDir>/config.toml when path is empty. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
