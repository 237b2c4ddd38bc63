package ai

import (
	"fmt"

	"github.com/kiranshivaraju/cvforge/internal/ai/mock"
	"github.com/kiranshivaraju/cvforge/internal/ai/ollama"
	"github.com/kiranshivaraju/cvforge/internal/ai/openai"
	"github.com/kiranshivaraju/cvforge/internal/config"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

// NewAdapter constructs the AI adapter for one generation variant. The
// variant's model name, when set, overrides the provider default; that is how
// the fine-tuned variant points at a fine-tuned model behind the same
// provider API. Called once per variant at server startup.
func NewAdapter(variant config.VariantConfig, cfg config.AIConfig) (models.Adapter, error) {
	switch variant.Provider {
	case "openai":
		pc := cfg.OpenAI
		if variant.Model != "" {
			pc.Model = variant.Model
		}
		return openai.NewAdapter(pc), nil
	case "ollama":
		pc := cfg.Ollama
		if variant.Model != "" {
			pc.Model = variant.Model
		}
		return ollama.NewAdapter(pc), nil
	case "mock":
		return mock.NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, ollama, mock", variant.Provider)
	}
}
