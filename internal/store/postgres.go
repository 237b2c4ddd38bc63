package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiranshivaraju/cvforge/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) UpsertDocument(ctx context.Context, doc *models.Document) error {
	embedding, err := json.Marshal(doc.Embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	doc.ID = models.DocumentID(doc.JobID, doc.DocType)

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, job_id, doc_type, content, embedding, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (job_id, doc_type)
		 DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding, updated_at = EXCLUDED.updated_at`,
		doc.ID, doc.JobID, doc.DocType, doc.Content, embedding, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, jobID, docType string) (*models.Document, error) {
	var (
		doc       models.Document
		embedding []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, job_id, doc_type, content, embedding, created_at, updated_at
		 FROM documents WHERE job_id = $1 AND doc_type = $2`,
		jobID, docType,
	).Scan(&doc.ID, &doc.JobID, &doc.DocType, &doc.Content, &embedding, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s-%s: %w", jobID, docType, err)
	}

	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &doc.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding for %s: %w", doc.ID, err)
		}
	}
	return &doc, nil
}

var _ Store = (*PostgresStore)(nil)
