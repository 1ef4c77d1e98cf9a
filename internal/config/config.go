package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	HTTPAddr  string          `json:"httpAddr"`
	Redis     RedisConfig     `json:"redis"`
	Auth      AuthConfig      `json:"auth"`
	Estimator EstimatorConfig `json:"estimator"`
	Policy    PolicyConfig    `json:"policy"`
	Journal   JournalConfig   `json:"journal"`
}

// RedisConfig selects the Redis-backed queue store when Addr is non-empty.
// With an empty Addr the server runs on its embedded in-memory store.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// AuthConfig holds the token codec keys. HashKey must be 32 or 64 bytes and
// BlockKey 16, 24 or 32 bytes, both hex-encoded.
type AuthConfig struct {
	HashKey         string `json:"hashKey"`
	BlockKey        string `json:"blockKey"`
	TokenTTLMinutes int    `json:"tokenTtlMinutes"`
}

// EstimatorConfig points at an optional wait-time model artifact.
type EstimatorConfig struct {
	ModelPath string `json:"modelPath"`
	TimeoutMs int    `json:"timeoutMs"`
}

// PolicyConfig captures the coordination policy constants.
type PolicyConfig struct {
	BanThreshold     int `json:"banThreshold"`
	CompletionReward int `json:"completionReward"`
}

// JournalConfig bounds the per-venue mutation journal.
type JournalConfig struct {
	MaxEntries int `json:"maxEntries"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		Auth: AuthConfig{
			TokenTTLMinutes: 1440,
		},
		Estimator: EstimatorConfig{
			TimeoutMs: 500,
		},
		Policy: PolicyConfig{
			BanThreshold:     3,
			CompletionReward: 10,
		},
		Journal: JournalConfig{
			MaxEntries: 1024,
		},
	}
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.Policy.BanThreshold < 1 {
		return fmt.Errorf("config: policy.banThreshold must be >= 1, got %d", c.Policy.BanThreshold)
	}
	if c.Policy.CompletionReward < 0 {
		return fmt.Errorf("config: policy.completionReward must be >= 0, got %d", c.Policy.CompletionReward)
	}
	if c.Journal.MaxEntries < 0 {
		return fmt.Errorf("config: journal.maxEntries must be >= 0, got %d", c.Journal.MaxEntries)
	}
	return nil
}
