// Package pipeline implements the upload and generation stages of the CV
// tailoring pipeline. The stages are stateless; everything they share flows
// through the object store under jobkey's key schema.
package pipeline

import "errors"

// The pipeline failure taxonomy. Handlers translate these into HTTP
// responses; internal detail is logged here and never surfaced.
var (
	// ErrInvalidSubmission: the caller's input is incomplete or oversized.
	// No storage write has happened. Not retryable without fixing the input.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrJobNotFound: the job's input artifacts are not (or not fully)
	// present. Retryable only after a fresh upload.
	ErrJobNotFound = errors.New("job not found")
	// ErrGenerationFailed: the transformation failed. Inputs are untouched,
	// so re-invoking the same call is always safe.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrStorageUnavailable: transient storage failure, retryable with backoff.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
