package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, float64(0), cfg.Temperature)
	assert.Equal(t, 800, cfg.MaxTokens)
	assert.Equal(t, 2, cfg.MaxRounds)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, 2, cfg.MaxHistory)
	assert.Equal(t, ":8000", cfg.ListenAddr)
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "provider: openai\nmodel: gpt-4o-mini\nmax_rounds: 3\nlisten_addr: ':9000'\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 3, cfg.MaxRounds)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	// Untouched keys keep their defaults.
	assert.Equal(t, 800, cfg.MaxTokens)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-oai-test")
	t.Setenv("COURSEFLOW_LISTEN_ADDR", ":7777")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-ant-test", cfg.AnthropicAPIKey)
	assert.Equal(t, "sk-oai-test", cfg.OpenAIAPIKey)
	assert.Equal(t, ":7777", cfg.ListenAddr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown provider", yaml: "provider: cohere\n"},
		{name: "zero rounds", yaml: "max_rounds: 0\n"},
		{name: "overlap too large", yaml: "chunk_size: 100\nchunk_overlap: 100\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestAPIKeyPerProvider(t *testing.T) {
	cfg := Default()
	cfg.AnthropicAPIKey = "ant"
	cfg.OpenAIAPIKey = "oai"

	assert.Equal(t, "ant", cfg.APIKey())
	cfg.Provider = "openai"
	assert.Equal(t, "oai", cfg.APIKey())
}
