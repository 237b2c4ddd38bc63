package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kiranshivaraju/cvforge/internal/blob"
	"github.com/kiranshivaraju/cvforge/internal/cache"
	"github.com/kiranshivaraju/cvforge/internal/store"
	"github.com/kiranshivaraju/cvforge/pkg/jobkey"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

// UploadInput is one submission: a CV document plus the job-offer text it
// should be tailored to.
type UploadInput struct {
	Filename string
	CV       []byte
	JobOffer string
}

// UploadResult is returned to the caller; the JobID correlates all later
// generation calls with this submission.
type UploadResult struct {
	JobID       string
	CVURL       string
	JobOfferURL string
}

// UploadService implements the upload stage: validate, mint a job identifier,
// persist both input artifacts, hand the pair to the embedding worker.
type UploadService struct {
	blobs      blob.Store
	docs       store.Store
	cache      cache.Cache
	embedder   models.Adapter
	bucket     string
	urlExpiry  time.Duration
	maxCVBytes int64

	embedTimeout time.Duration
	// wait lets tests block until the background embedding job finishes.
	wait func(func())
}

// NewUploadService creates a new UploadService. The embedder is the standard
// variant's adapter; it only serves the background embedding job.
func NewUploadService(blobs blob.Store, docs store.Store, ca cache.Cache, embedder models.Adapter,
	bucket string, urlExpiry time.Duration, maxCVBytes int64) *UploadService {
	return &UploadService{
		blobs:        blobs,
		docs:         docs,
		cache:        ca,
		embedder:     embedder,
		bucket:       bucket,
		urlExpiry:    urlExpiry,
		maxCVBytes:   maxCVBytes,
		embedTimeout: 2 * time.Minute,
		wait:         func(fn func()) { go fn() },
	}
}

// Upload validates the submission, writes both artifacts and returns the new
// job identifier with retrievable artifact locations. Validation failures
// leave storage untouched. The two writes are not transactional: a crash
// between them leaves a partial submission, which the generation stage reads
// as job-not-found.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if len(in.CV) == 0 {
		return nil, fmt.Errorf("%w: cv file is required", ErrInvalidSubmission)
	}
	if strings.TrimSpace(in.JobOffer) == "" {
		return nil, fmt.Errorf("%w: job offer text is required", ErrInvalidSubmission)
	}
	if s.maxCVBytes > 0 && int64(len(in.CV)) > s.maxCVBytes {
		return nil, fmt.Errorf("%w: cv exceeds %d bytes", ErrInvalidSubmission, s.maxCVBytes)
	}

	if err := s.blobs.EnsureBucket(ctx, s.bucket); err != nil {
		slog.Error("ensure bucket failed", "bucket", s.bucket, "error", err)
		return nil, fmt.Errorf("%w: ensure bucket", ErrStorageUnavailable)
	}

	jobID := jobkey.Mint()
	cvKey := jobkey.CVKey(jobID, in.Filename)
	offerKey := jobkey.JobOfferKey(jobID)

	err := s.blobs.Put(ctx, s.bucket, cvKey, bytes.NewReader(in.CV), int64(len(in.CV)), cvContentType(in.Filename))
	if err != nil {
		slog.Error("cv upload failed", "job_id", jobID, "key", cvKey, "error", err)
		return nil, fmt.Errorf("%w: write cv", ErrStorageUnavailable)
	}

	offer := []byte(in.JobOffer)
	err = s.blobs.Put(ctx, s.bucket, offerKey, bytes.NewReader(offer), int64(len(offer)), "text/plain; charset=utf-8")
	if err != nil {
		slog.Error("job offer upload failed", "job_id", jobID, "key", offerKey, "error", err)
		return nil, fmt.Errorf("%w: write job offer", ErrStorageUnavailable)
	}

	cvURL, err := s.blobs.PresignedURL(ctx, s.bucket, cvKey, s.urlExpiry)
	if err != nil {
		slog.Error("presign cv failed", "job_id", jobID, "error", err)
		return nil, fmt.Errorf("%w: presign cv", ErrStorageUnavailable)
	}
	offerURL, err := s.blobs.PresignedURL(ctx, s.bucket, offerKey, s.urlExpiry)
	if err != nil {
		slog.Error("presign job offer failed", "job_id", jobID, "error", err)
		return nil, fmt.Errorf("%w: presign job offer", ErrStorageUnavailable)
	}

	_ = s.cache.SetJobStage(ctx, jobID, cache.StagePending, 30*time.Minute)
	cv := make([]byte, len(in.CV))
	copy(cv, in.CV)
	s.wait(func() { s.runEmbeddings(jobID, in.Filename, cv, in.JobOffer) })

	slog.Info("submission stored", "job_id", jobID, "cv_key", cvKey, "cv_bytes", len(in.CV))

	return &UploadResult{
		JobID:       jobID,
		CVURL:       cvURL,
		JobOfferURL: offerURL,
	}, nil
}

func cvContentType(filename string) string {
	if strings.EqualFold(strings.TrimSpace(filenameExt(filename)), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}

func filenameExt(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return filename[i:]
	}
	return ""
}
