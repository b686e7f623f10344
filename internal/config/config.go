package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file.
const FileName = "teller.yaml"

// Config represents the top-level teller.yaml configuration.
type Config struct {
	Vault   VaultConfig   `yaml:"vault"`
	PIN     PINConfig     `yaml:"pin"`
	Locking LockingConfig `yaml:"locking"`
	Logging LoggingConfig `yaml:"logging"`
}

// VaultConfig locates the account snapshot file.
type VaultConfig struct {
	File string `yaml:"file"`
}

// PINConfig is the credential policy for new accounts.
type PINConfig struct {
	Length int `yaml:"length"`
}

// LockingConfig bounds how long an operation waits for an account lock.
type LockingConfig struct {
	AcquireTimeout string `yaml:"acquire_timeout"` // duration string, e.g. "3s"
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

const defaultAcquireTimeout = 3 * time.Second

// Timeout parses AcquireTimeout, falling back to the default on empty or
// malformed values.
func (l LockingConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(l.AcquireTimeout)
	if err != nil || d <= 0 {
		return defaultAcquireTimeout
	}
	return d
}

// Load reads a teller.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Vault:   VaultConfig{File: "vault.json"},
		PIN:     PINConfig{Length: 4},
		Locking: LockingConfig{AcquireTimeout: "3s"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}
