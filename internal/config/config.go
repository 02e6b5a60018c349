package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

// ProviderConfig selects one AI provider entry. Args is passed through
// to the provider factory untouched (api_key, base_url, ...).
type ProviderConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Args     interface{} `json:"args"`
}

type EmbeddingConfig struct {
	Dimension       int              `json:"dimension"`
	TimeoutSeconds  int              `json:"timeout_seconds"`
	CacheSize       int              `json:"cache_size"`
	CacheTTLMinutes int              `json:"cache_ttl_minutes"`
	Providers       []ProviderConfig `json:"providers"`
}

type GenerationConfig struct {
	TimeoutSeconds int              `json:"timeout_seconds"`
	Providers      []ProviderConfig `json:"providers"`
}

type Config struct {
	LogConfig  logger.LogConfig `json:"log_config"`
	Embedding  EmbeddingConfig  `json:"embedding"`
	Generation GenerationConfig `json:"generation"`
}

// Load reads and validates a JSON config file. Provider lists may be
// empty: embedding then always takes the deterministic fallback path
// and ask requests return the failure answer.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	if c.Embedding.Dimension < 0 {
		return fmt.Errorf("embedding.dimension must be positive")
	}
	if c.Embedding.Dimension == 0 {
		c.Embedding.Dimension = 1536
	}
	if c.Embedding.TimeoutSeconds <= 0 {
		c.Embedding.TimeoutSeconds = 30
	}
	if c.Embedding.CacheSize <= 0 {
		c.Embedding.CacheSize = 4096
	}
	if c.Embedding.CacheTTLMinutes <= 0 {
		c.Embedding.CacheTTLMinutes = 120
	}
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = 60
	}
	for i, p := range c.Embedding.Providers {
		if p.Provider == "" || p.Model == "" {
			return fmt.Errorf("embedding.providers[%d]: provider and model are required", i)
		}
	}
	for i, p := range c.Generation.Providers {
		if p.Provider == "" || p.Model == "" {
			return fmt.Errorf("generation.providers[%d]: provider and model are required", i)
		}
	}
	return nil
}
