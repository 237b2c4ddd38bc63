package store

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/cvforge/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface for extracted documents. All database
// operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// UpsertDocument inserts or replaces the document for (job, type).
	UpsertDocument(ctx context.Context, doc *models.Document) error
	// GetDocument returns the document for (job, type), or ErrNotFound.
	GetDocument(ctx context.Context, jobID, docType string) (*models.Document, error)
}
