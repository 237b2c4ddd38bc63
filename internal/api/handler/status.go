package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/cvforge/internal/api/response"
	"github.com/kiranshivaraju/cvforge/internal/cache"
	"github.com/kiranshivaraju/cvforge/pkg/jobkey"
)

// statusResponse is the success body of GET /jobs/{jobID}/status.
type statusResponse struct {
	JobID string `json:"jobId"`
	Stage string `json:"stage"`
}

// NewStatusHandler returns an http.HandlerFunc for GET /jobs/{jobID}/status.
// It reports the embedding stage tracked in the cache. Stage entries expire,
// so an unknown job and an old completed job are indistinguishable here.
func NewStatusHandler(c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		if !jobkey.Valid(jobID) {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "job not found")
			return
		}

		stage, found, err := c.GetJobStage(r.Context(), jobID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "could not read job status")
			return
		}
		if !found {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "job not found")
			return
		}

		response.OK(w, statusResponse{JobID: jobID, Stage: stage})
	}
}
