package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/cvforge/internal/ai"
	"github.com/kiranshivaraju/cvforge/internal/ai/ollama"
	"github.com/kiranshivaraju/cvforge/internal/config"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *ollama.Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return ollama.NewAdapter(config.OllamaConfig{
		BaseURL:    srv.URL,
		Model:      "cv-finetune",
		EmbedModel: "nomic-embed-text",
	})
}

func TestAdaptCV_Success(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cv-finetune", req.Model)
		assert.False(t, req.Stream)
		assert.True(t, strings.Contains(req.Prompt, "JOB OFFER:"))
		assert.True(t, strings.Contains(req.Prompt, "ORIGINAL CV:"))

		json.NewEncoder(w).Encode(map[string]any{"response": "adapted by fine-tuned model"})
	})

	out, err := adapter.AdaptCV(context.Background(), models.AdaptRequest{
		CVText:       "my cv",
		JobOfferText: "go engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, "adapted by fine-tuned model", out)
}

func TestAdaptCV_EmptyResponse(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"response": ""})
	})

	_, err := adapter.AdaptCV(context.Background(), models.AdaptRequest{CVText: "cv", JobOfferText: "offer"})
	assert.ErrorIs(t, err, ai.ErrInvalidResponse)
}

func TestAdaptCV_Unreachable(t *testing.T) {
	adapter := ollama.NewAdapter(config.OllamaConfig{
		BaseURL: "http://127.0.0.1:1",
		Model:   "llama3",
	})

	_, err := adapter.AdaptCV(context.Background(), models.AdaptRequest{CVText: "cv", JobOfferText: "offer"})
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
}

func TestEmbed_Success(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.5, 0.25}})
	})

	vec, err := adapter.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}
