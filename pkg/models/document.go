package models

import "time"

// Document types stored for a submission.
const (
	DocTypeCV       = "cv"
	DocTypeJobOffer = "joboffer"
)

// Document is the extracted text and embedding of one submitted artifact,
// keyed by (job, type). Written by the embedding worker, read by the
// generation stage.
type Document struct {
	ID        string    `json:"id"` // "{jobID}-{docType}"
	JobID     string    `json:"job_id"`
	DocType   string    `json:"doc_type"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentID builds the canonical document identifier.
func DocumentID(jobID, docType string) string {
	return jobID + "-" + docType
}
