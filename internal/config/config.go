package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"caprun/internal/auth"
)

// Config is the root configuration for the runtime.
type Config struct {
	General  GeneralConfig  `json:"general"`
	Store    StoreConfig    `json:"store"`
	Auth     auth.Config    `json:"auth"`
	Entities EntitiesConfig `json:"entities"`
	Trees    TreesConfig    `json:"configTrees"`
	Provider ProviderConfig `json:"provider"`
}

type GeneralConfig struct {
	Workspace     string `json:"workspace"`
	LogLevel      string `json:"logLevel"`
	Owner         string `json:"owner"` // default principal id
	MaxIterations int    `json:"maxIterations"`
	SchemaDir     string `json:"schemaDir"`
}

type StoreConfig struct {
	DBPath string `json:"dbPath"`
}

type EntitiesConfig struct {
	Path string `json:"path"`
}

// TreesConfig points at the two comparable config stores.
type TreesConfig struct {
	ActiveDir  string `json:"activeDir"`
	StagingDir string `json:"stagingDir"`
}

type ProviderConfig struct {
	APIBase string `json:"apiBase,omitempty"`
	Model   string `json:"model,omitempty"`
}

// DefaultConfigDir returns ~/.caprun.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".caprun"
	}
	return filepath.Join(home, ".caprun")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config with indentation so it stays hand-editable.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Validate checks the handful of invariants a config must hold.
func (c *Config) Validate() error {
	if c.General.Owner == "" {
		return fmt.Errorf("general.owner must not be empty")
	}
	switch c.Auth.DefaultPolicy {
	case "", "allow", "deny":
	default:
		return fmt.Errorf("auth.defaultPolicy must be \"allow\" or \"deny\", got %q", c.Auth.DefaultPolicy)
	}
	if c.General.MaxIterations < 0 {
		return fmt.Errorf("general.maxIterations must not be negative")
	}
	return nil
}
