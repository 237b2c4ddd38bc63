// Package ollama implements models.Adapter against a local or fine-tuned
// model served by Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	ai "github.com/kiranshivaraju/cvforge/internal/ai/aierrors"
	"github.com/kiranshivaraju/cvforge/internal/config"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

// Adapter implements models.Adapter using Ollama's generate and embeddings
// endpoints.
type Adapter struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewAdapter(cfg config.OllamaConfig) *Adapter {
	return &Adapter{cfg: cfg, client: &http.Client{}}
}

func (a *Adapter) Name() string { return "ollama" }

func (a *Adapter) AdaptCV(ctx context.Context, req models.AdaptRequest) (string, error) {
	body := generateRequest{
		Model:  a.cfg.Model,
		Prompt: buildPrompt(req),
		Stream: false,
	}

	var resp generateResponse
	if err := a.post(ctx, "/api/generate", body, &resp); err != nil {
		return "", err
	}
	if resp.Response == "" {
		return "", fmt.Errorf("%w: empty generation", ai.ErrInvalidResponse)
	}
	return resp.Response, nil
}

func (a *Adapter) Embed(ctx context.Context, text string) ([]float32, error) {
	body := embeddingRequest{
		Model:  a.cfg.EmbedModel,
		Prompt: text,
	}

	var resp embeddingResponse
	if err := a.post(ctx, "/api/embeddings", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ai.ErrInvalidResponse)
	}
	return resp.Embedding, nil
}

func (a *Adapter) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ai.ErrInvalidResponse, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ai.ErrInvalidResponse, err)
	}
	return nil
}

// buildPrompt uses the direct rewrite instruction that works best for small
// fine-tuned models: no role play, a single imperative, inputs last.
func buildPrompt(req models.AdaptRequest) string {
	return "Rewrite this CV so it targets the following job offer. Only reorganize " +
		"and highlight the most relevant information; do not invent anything new.\n\n" +
		"JOB OFFER:\n" + req.JobOfferText + "\n\n" +
		"ORIGINAL CV:\n" + req.CVText + "\n\n" +
		"ADAPTED CV:"
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ai.ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ai.ErrInferenceTimeout, err)
	}

	return fmt.Errorf("%w: %v", ai.ErrProviderUnavailable, err)
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

var _ models.Adapter = (*Adapter)(nil)
