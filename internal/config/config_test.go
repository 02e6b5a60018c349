package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, 1536, cfg.Embedding.Dimension)
	assert.Equal(t, 30, cfg.Embedding.TimeoutSeconds)
	assert.Equal(t, 4096, cfg.Embedding.CacheSize)
	assert.Equal(t, 120, cfg.Embedding.CacheTTLMinutes)
	assert.Equal(t, 60, cfg.Generation.TimeoutSeconds)
	assert.Equal(t, "info", cfg.LogConfig.Level)
	assert.Empty(t, cfg.Embedding.Providers)
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"log_config": {"level": "debug", "console": true},
		"embedding": {
			"dimension": 768,
			"timeout_seconds": 10,
			"providers": [
				{"provider": "openai", "model": "text-embedding-3-small", "args": {"api_key": "k1"}},
				{"provider": "gemini", "model": "gemini-embedding-001", "args": {"api_key": "k2"}}
			]
		},
		"generation": {
			"timeout_seconds": 45,
			"providers": [{"provider": "openai", "model": "gpt-4-turbo-preview", "args": {"api_key": "k1"}}]
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
	assert.Equal(t, 10, cfg.Embedding.TimeoutSeconds)
	require.Len(t, cfg.Embedding.Providers, 2)
	assert.Equal(t, "gemini", cfg.Embedding.Providers[1].Provider)
	assert.Equal(t, 45, cfg.Generation.TimeoutSeconds)
	assert.Equal(t, "debug", cfg.LogConfig.Level)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "negative dimension", content: `{"embedding": {"dimension": -1}}`},
		{name: "provider without model", content: `{"embedding": {"providers": [{"provider": "openai"}]}}`},
		{name: "generation provider without name", content: `{"generation": {"providers": [{"model": "m"}]}}`},
		{name: "bad json", content: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
