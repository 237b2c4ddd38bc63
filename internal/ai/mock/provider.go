// Package mock provides a models.Adapter test double.
package mock

import (
	"context"

	ai "github.com/kiranshivaraju/cvforge/internal/ai/aierrors"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

// MockAdapter satisfies models.Adapter for testing.
type MockAdapter struct {
	Name_       string
	AdaptCVFunc func(ctx context.Context, req models.AdaptRequest) (string, error)
	EmbedFunc   func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockAdapter) Name() string { return m.Name_ }

func (m *MockAdapter) AdaptCV(ctx context.Context, req models.AdaptRequest) (string, error) {
	if m.AdaptCVFunc != nil {
		return m.AdaptCVFunc(ctx, req)
	}
	return "", nil
}

func (m *MockAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return nil, nil
}

// NewMockAdapter returns a MockAdapter with sensible default responses.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		Name_: "mock",
		AdaptCVFunc: func(_ context.Context, req models.AdaptRequest) (string, error) {
			return "ADAPTED CV\n\nTailored to: " + firstLine(req.JobOfferText) + "\n\n" + req.CVText, nil
		},
		EmbedFunc: func(_ context.Context, text string) ([]float32, error) {
			// Deterministic toy embedding so cosine similarity is stable in tests.
			v := float32(len(text)%97) / 97
			return []float32{v, 1 - v, 0.5}, nil
		},
	}
}

// NewFailingAdapter returns a MockAdapter that always returns the given error.
func NewFailingAdapter(err error) *MockAdapter {
	return &MockAdapter{
		Name_: "mock-failing",
		AdaptCVFunc: func(_ context.Context, _ models.AdaptRequest) (string, error) {
			return "", err
		},
		EmbedFunc: func(_ context.Context, _ string) ([]float32, error) {
			return nil, err
		},
	}
}

// NewTimeoutAdapter returns a MockAdapter that blocks until context is cancelled.
func NewTimeoutAdapter() *MockAdapter {
	return &MockAdapter{
		Name_: "mock-timeout",
		AdaptCVFunc: func(ctx context.Context, _ models.AdaptRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
		EmbedFunc: func(ctx context.Context, _ string) ([]float32, error) {
			<-ctx.Done()
			return nil, ai.ErrInferenceTimeout
		},
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// Compile-time check that MockAdapter implements Adapter.
var _ models.Adapter = (*MockAdapter)(nil)
