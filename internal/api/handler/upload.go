package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/kiranshivaraju/cvforge/internal/api/response"
	"github.com/kiranshivaraju/cvforge/internal/pipeline"
)

// Uploader defines the interface the upload handler depends on.
type Uploader interface {
	Upload(ctx context.Context, in pipeline.UploadInput) (*pipeline.UploadResult, error)
}

// uploadResponse is the success body of POST /upload. The field names are
// fixed by existing clients.
type uploadResponse struct {
	Message     string `json:"message"`
	JobID       string `json:"jobId"`
	CVURL       string `json:"cvUrl"`
	JobOfferURL string `json:"jobOfferUrl"`
}

// NewUploadHandler returns an http.HandlerFunc for POST /upload. It expects a
// multipart form with a `cv` file part and a `jobOffer` text field. maxBytes
// bounds the whole request body.
func NewUploadHandler(svc Uploader, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge,
					"PAYLOAD_TOO_LARGE", "request body exceeds the upload limit")
				return
			}
			response.Error(w, http.StatusBadRequest,
				"INVALID_REQUEST", "expected a multipart form with cv and jobOffer fields")
			return
		}

		file, header, err := r.FormFile("cv")
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				"INVALID_REQUEST", "cv file is required")
			return
		}
		defer file.Close()

		cvBytes, err := io.ReadAll(file)
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				"INVALID_REQUEST", "could not read cv file")
			return
		}

		result, err := svc.Upload(r.Context(), pipeline.UploadInput{
			Filename: header.Filename,
			CV:       cvBytes,
			JobOffer: r.FormValue("jobOffer"),
		})
		if err != nil {
			switch {
			case errors.Is(err, pipeline.ErrInvalidSubmission):
				response.Error(w, http.StatusBadRequest,
					"INVALID_SUBMISSION", userMessage(err, pipeline.ErrInvalidSubmission))
			case errors.Is(err, pipeline.ErrStorageUnavailable):
				response.Error(w, http.StatusInternalServerError,
					"STORAGE_UNAVAILABLE", "could not store the submission, please retry")
			default:
				response.Error(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "an unexpected error occurred")
			}
			return
		}

		response.OK(w, uploadResponse{
			Message:     "cv and job offer uploaded",
			JobID:       result.JobID,
			CVURL:       result.CVURL,
			JobOfferURL: result.JobOfferURL,
		})
	}
}

// userMessage strips the sentinel prefix from a wrapped pipeline error,
// leaving the short user-safe detail ("cv file is required"). Falls back to
// the sentinel's own text.
func userMessage(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return sentinel.Error()
}
