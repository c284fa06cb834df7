// Package cli holds the wiring shared by the veritor commands: configuration
// loading and engine construction.
package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML support for strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AgentConfig describes one remote retrieval agent.
type AgentConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// Config is the application configuration, loaded from YAML. Zero values fall
// back to sane defaults, so an empty file is a valid config.
type Config struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	// RedisURL enables shared checkpoints and cross-replica locking. Empty
	// means in-process memory storage.
	RedisURL string `yaml:"redis_url,omitempty"`

	// RulesPath points at a rule set file. Empty means the embedded defaults.
	RulesPath string `yaml:"rules_path,omitempty"`

	MaxAttempts     int      `yaml:"max_attempts"`
	ConfidenceFloor float64  `yaml:"confidence_floor"`
	AttemptTimeout  Duration `yaml:"attempt_timeout"`

	// EncryptionKey seals checkpoints at rest with AES-256-GCM. It is a
	// base64-encoded 32-byte key; empty disables encryption.
	EncryptionKey string `yaml:"encryption_key,omitempty"`

	// PIIPatterns are regular expressions masked out of persisted
	// checkpoints before they reach the store.
	PIIPatterns []string `yaml:"pii_patterns,omitempty"`

	// DefaultAgent names the agent handling low-confidence and unmatched
	// intents. It must be a key of Agents unless Agents is empty.
	DefaultAgent string                 `yaml:"default_agent"`
	Agents       map[string]AgentConfig `yaml:"agents,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Listen:       ":8080",
		LogLevel:     "info",
		DefaultAgent: "general",
	}
}

// LoadConfig reads a YAML config file, layering it over the defaults. An
// empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must not be negative")
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence_floor must be within [0,1]")
	}
	if len(c.Agents) > 0 {
		if _, ok := c.Agents[c.DefaultAgent]; !ok {
			return fmt.Errorf("default_agent %q is not present in agents", c.DefaultAgent)
		}
	}
	for name, agent := range c.Agents {
		if agent.Endpoint == "" {
			return fmt.Errorf("agent %q has no endpoint", name)
		}
	}
	if c.EncryptionKey != "" {
		if _, err := c.encryptionKey(); err != nil {
			return err
		}
	}
	for _, p := range c.PIIPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
	}
	return nil
}

// encryptionKey decodes the configured checkpoint encryption key.
func (c Config) encryptionKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
