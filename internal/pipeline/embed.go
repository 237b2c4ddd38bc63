package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/cvforge/internal/cache"
	"github.com/kiranshivaraju/cvforge/internal/extract"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

const stageTTL = 30 * time.Minute

// runEmbeddings extracts text from both input artifacts, computes their
// embeddings and upserts the resulting documents. It runs in a background
// goroutine after a successful upload; failure here never fails the upload,
// the generation stage falls back to extracting text on demand.
func (s *UploadService) runEmbeddings(jobID, filename string, cv []byte, offer string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.embedTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in runEmbeddings", "error", r, "job_id", jobID)
			_ = s.cache.SetJobStage(ctx, jobID, cache.StageFailed, stageTTL)
		}
	}()

	_ = s.cache.SetJobStage(ctx, jobID, cache.StageRunning, stageTTL)

	if err := s.embedPair(ctx, jobID, filename, cv, offer); err != nil {
		slog.Error("embedding job failed", "job_id", jobID, "error", err)
		_ = s.cache.SetJobStage(ctx, jobID, cache.StageFailed, stageTTL)
		return
	}

	_ = s.cache.SetJobStage(ctx, jobID, cache.StageCompleted, stageTTL)
	slog.Info("embedding job completed", "job_id", jobID, "provider", s.embedder.Name())
}

func (s *UploadService) embedPair(ctx context.Context, jobID, filename string, cv []byte, offer string) error {
	cvText, err := extract.Text(cv, filename)
	if err != nil {
		return fmt.Errorf("extract cv text: %w", err)
	}

	cvVec, err := s.embedder.Embed(ctx, cvText)
	if err != nil {
		return fmt.Errorf("embed cv: %w", err)
	}
	offerVec, err := s.embedder.Embed(ctx, offer)
	if err != nil {
		return fmt.Errorf("embed job offer: %w", err)
	}

	if err := s.docs.UpsertDocument(ctx, &models.Document{
		JobID:     jobID,
		DocType:   models.DocTypeCV,
		Content:   cvText,
		Embedding: cvVec,
	}); err != nil {
		return fmt.Errorf("store cv document: %w", err)
	}
	if err := s.docs.UpsertDocument(ctx, &models.Document{
		JobID:     jobID,
		DocType:   models.DocTypeJobOffer,
		Content:   offer,
		Embedding: offerVec,
	}); err != nil {
		return fmt.Errorf("store job offer document: %w", err)
	}
	return nil
}
