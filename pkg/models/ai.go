// Package models contains shared data models used across the CVForge codebase.
package models

import "context"

// Adapter is the core interface that all AI integrations must implement.
// Never call specific AI providers directly — always inject this interface.
type Adapter interface {
	// AdaptCV rewrites a CV so it targets the given job offer. The result is
	// plain text ready for rendering; the adapter must not invent content.
	AdaptCV(ctx context.Context, req AdaptRequest) (string, error)
	// Embed returns an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}

// AdaptRequest is the input to a CV adaptation operation.
type AdaptRequest struct {
	CVText       string
	JobOfferText string
	// Similarity is the cosine similarity between the CV and job-offer
	// embeddings, or negative when embeddings were unavailable.
	Similarity float64
}
