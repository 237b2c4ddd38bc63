// Package openai implements models.Adapter against the OpenAI HTTP API.
package openai

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

// Adapter implements models.Adapter using OpenAI chat completions and
// embeddings.
type Adapter struct {
	cfg    config.OpenAIConfig
	client *http.Client
}

func NewAdapter(cfg config.OpenAIConfig) *Adapter {
	return &Adapter{cfg: cfg, client: &http.Client{}}
}

func (a *Adapter) Name() string { return "openai" }

func (a *Adapter) AdaptCV(ctx context.Context, req models.AdaptRequest) (string, error) {
	body := chatRequest{
		Model:       a.cfg.Model,
		Temperature: 0.7,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(req)},
		},
	}

	var resp chatResponse
	if err := a.post(ctx, "/chat/completions", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ai.ErrInvalidResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *Adapter) Embed(ctx context.Context, text string) ([]float32, error) {
	body := embeddingRequest{
		Model: a.cfg.EmbedModel,
		Input: text,
	}

	var resp embeddingResponse
	if err := a.post(ctx, "/embeddings", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ai.ErrInvalidResponse)
	}
	return resp.Data[0].Embedding, nil
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
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

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

// buildPrompt mirrors the HR-assistant prompt the standard variant has always
// used: rearrange and highlight, never invent.
func buildPrompt(req models.AdaptRequest) string {
	prompt := "You are an expert HR assistant. Adapt the original CV to the job offer, " +
		"highlighting the most relevant experience and skills. Only reorganize and " +
		"emphasize existing information; do not invent anything new.\n\n"
	if req.Similarity >= 0 {
		prompt += fmt.Sprintf("Cosine similarity between CV and offer: %.2f\n\n", req.Similarity)
	}
	prompt += "--- ORIGINAL CV ---\n" + req.CVText + "\n\n" +
		"--- JOB OFFER ---\n" + req.JobOfferText + "\n\n" +
		"Write the adapted CV:"
	return prompt
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

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

var _ models.Adapter = (*Adapter)(nil)
