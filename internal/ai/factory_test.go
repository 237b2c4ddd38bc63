package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/cvforge/internal/ai"
	"github.com/kiranshivaraju/cvforge/internal/config"
)

func baseAIConfig() config.AIConfig {
	return config.AIConfig{
		OpenAI: config.OpenAIConfig{
			APIKey:     "sk-test",
			BaseURL:    "https://api.openai.com/v1",
			Model:      "gpt-4o-mini",
			EmbedModel: "text-embedding-3-small",
		},
		Ollama: config.OllamaConfig{
			BaseURL:    "http://localhost:11434",
			Model:      "llama3",
			EmbedModel: "nomic-embed-text",
		},
	}
}

func TestNewAdapter_KnownProviders(t *testing.T) {
	for provider, wantName := range map[string]string{
		"openai": "openai",
		"ollama": "ollama",
		"mock":   "mock",
	} {
		adapter, err := ai.NewAdapter(config.VariantConfig{Provider: provider}, baseAIConfig())
		require.NoError(t, err, provider)
		assert.Equal(t, wantName, adapter.Name())
	}
}

func TestNewAdapter_UnknownProvider(t *testing.T) {
	_, err := ai.NewAdapter(config.VariantConfig{Provider: "claude"}, baseAIConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown AI provider")
}
