package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kiranshivaraju/cvforge/internal/ai"
	"github.com/kiranshivaraju/cvforge/internal/api/response"
	"github.com/kiranshivaraju/cvforge/internal/pipeline"
	"github.com/kiranshivaraju/cvforge/pkg/jobkey"
)

// Generator defines the interface the generate handlers depend on.
type Generator interface {
	Generate(ctx context.Context, jobID string, variant jobkey.Variant) (string, error)
}

// generateResponse is the success body of POST /generate and
// POST /generate-phase2.
type generateResponse struct {
	GeneratedCVURL string `json:"generatedCvUrl"`
}

// NewGenerateHandler returns an http.HandlerFunc for a generation variant.
// Both routes share the handler; only the variant differs.
func NewGenerateHandler(svc Generator, variant jobkey.Variant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobID string `json:"jobId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
			return
		}
		if req.JobID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobId is required")
			return
		}

		url, err := svc.Generate(r.Context(), req.JobID, variant)
		if err != nil {
			switch {
			case errors.Is(err, pipeline.ErrJobNotFound):
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "job not found")
			case errors.Is(err, ai.ErrInferenceTimeout):
				response.Error(w, http.StatusGatewayTimeout,
					"GENERATION_TIMEOUT", "generation timed out, please retry")
			case errors.Is(err, pipeline.ErrGenerationFailed):
				response.Error(w, http.StatusBadGateway,
					"GENERATION_FAILED", "generation failed, please retry")
			case errors.Is(err, pipeline.ErrStorageUnavailable):
				response.Error(w, http.StatusInternalServerError,
					"STORAGE_UNAVAILABLE", "could not reach storage, please retry")
			default:
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "an unexpected error occurred")
			}
			return
		}

		response.OK(w, generateResponse{GeneratedCVURL: url})
	}
}
