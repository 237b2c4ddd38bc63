package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kiranshivaraju/cvforge/internal/blob"
	"github.com/kiranshivaraju/cvforge/internal/extract"
	"github.com/kiranshivaraju/cvforge/internal/render"
	"github.com/kiranshivaraju/cvforge/internal/store"
	"github.com/kiranshivaraju/cvforge/pkg/jobkey"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

// GenerateService implements the generation stage. It is variant-polymorphic:
// every variant shares this code path and differs only in the injected
// adapter. The service never sees the upload that created the job; the shared
// key schema is the whole contract between the stages.
type GenerateService struct {
	blobs     blob.Store
	docs      store.Store
	adapters  map[jobkey.Variant]models.Adapter
	bucket    string
	urlExpiry time.Duration
	timeout   time.Duration

	// How long to wait for the background embedding job before falling back
	// to on-demand extraction.
	docAttempts int
	docDelay    time.Duration
}

// NewGenerateService creates a new GenerateService with one adapter per variant.
func NewGenerateService(blobs blob.Store, docs store.Store, adapters map[jobkey.Variant]models.Adapter,
	bucket string, urlExpiry, inferenceTimeout time.Duration) *GenerateService {
	return &GenerateService{
		blobs:       blobs,
		docs:        docs,
		adapters:    adapters,
		bucket:      bucket,
		urlExpiry:   urlExpiry,
		timeout:     inferenceTimeout,
		docAttempts: 3,
		docDelay:    2 * time.Second,
	}
}

// Generate produces a job-tailored CV for a previously uploaded submission
// and returns the location of the generated artifact. Re-invocation
// overwrites the previous output for the same (job, variant); concurrent
// duplicates race last-write-wins on the same key.
func (s *GenerateService) Generate(ctx context.Context, jobID string, variant jobkey.Variant) (string, error) {
	adapter, ok := s.adapters[variant]
	if !ok {
		return "", fmt.Errorf("%w: no adapter for variant %q", ErrGenerationFailed, variant)
	}
	if !jobkey.Valid(jobID) {
		return "", fmt.Errorf("%w: malformed job id", ErrJobNotFound)
	}

	// Strict existence check: both inputs must be present. A partial
	// submission (crash between the two upload writes) reads as not found.
	cvKey, cvFilename, err := s.locateCV(ctx, jobID)
	if err != nil {
		return "", err
	}
	if _, err := s.blobs.Stat(ctx, s.bucket, jobkey.JobOfferKey(jobID)); err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			return "", fmt.Errorf("%w: job offer artifact missing", ErrJobNotFound)
		}
		slog.Error("stat job offer failed", "job_id", jobID, "error", err)
		return "", fmt.Errorf("%w: stat job offer", ErrStorageUnavailable)
	}

	cvText, offerText, similarity, err := s.inputTexts(ctx, jobID, cvKey, cvFilename)
	if err != nil {
		return "", err
	}

	adaptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	adapted, err := adapter.AdaptCV(adaptCtx, models.AdaptRequest{
		CVText:       cvText,
		JobOfferText: offerText,
		Similarity:   similarity,
	})
	if err != nil {
		slog.Error("adaptation failed", "job_id", jobID, "variant", variant, "provider", adapter.Name(), "error", err)
		return "", fmt.Errorf("%w: %s adapter: %w", ErrGenerationFailed, adapter.Name(), err)
	}

	pdf, err := render.PDF(adapted)
	if err != nil {
		slog.Error("pdf render failed", "job_id", jobID, "variant", variant, "error", err)
		return "", fmt.Errorf("%w: render output", ErrGenerationFailed)
	}

	outKey := jobkey.GeneratedKey(jobID, variant)
	err = s.blobs.Put(ctx, s.bucket, outKey, bytes.NewReader(pdf), int64(len(pdf)), "application/pdf")
	if err != nil {
		slog.Error("write generated cv failed", "job_id", jobID, "key", outKey, "error", err)
		return "", fmt.Errorf("%w: write generated cv", ErrStorageUnavailable)
	}

	outURL, err := s.blobs.PresignedURL(ctx, s.bucket, outKey, s.urlExpiry)
	if err != nil {
		slog.Error("presign generated cv failed", "job_id", jobID, "error", err)
		return "", fmt.Errorf("%w: presign generated cv", ErrStorageUnavailable)
	}

	slog.Info("generated cv stored", "job_id", jobID, "variant", variant, "key", outKey, "similarity", similarity)
	return outURL, nil
}

// locateCV finds the single CV object for a job by listing the job's CV
// prefix, recovering the original filename from the key.
func (s *GenerateService) locateCV(ctx context.Context, jobID string) (key, filename string, err error) {
	objs, err := s.blobs.List(ctx, s.bucket, jobkey.CVPrefix(jobID))
	if err != nil {
		slog.Error("list cv prefix failed", "job_id", jobID, "error", err)
		return "", "", fmt.Errorf("%w: list cv", ErrStorageUnavailable)
	}
	for _, obj := range objs {
		keyJobID, name, parseErr := jobkey.ParseCVKey(obj.Key)
		if parseErr != nil || keyJobID != jobID {
			continue
		}
		return obj.Key, name, nil
	}
	return "", "", fmt.Errorf("%w: cv artifact missing", ErrJobNotFound)
}

// inputTexts returns the CV text, job-offer text and their cosine similarity.
// It prefers the documents written by the embedding worker, waiting briefly
// for them; if they never show up it downloads the blobs and extracts text
// directly, reporting a negative similarity.
func (s *GenerateService) inputTexts(ctx context.Context, jobID, cvKey, cvFilename string) (string, string, float64, error) {
	for attempt := 0; attempt < s.docAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.docDelay):
			case <-ctx.Done():
				return "", "", 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, ctx.Err())
			}
		}

		cvDoc, err := s.docs.GetDocument(ctx, jobID, models.DocTypeCV)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			slog.Warn("document lookup failed, will fall back to blobs", "job_id", jobID, "error", err)
			break
		}
		offerDoc, err := s.docs.GetDocument(ctx, jobID, models.DocTypeJobOffer)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			slog.Warn("document lookup failed, will fall back to blobs", "job_id", jobID, "error", err)
			break
		}

		return cvDoc.Content, offerDoc.Content, cosineSimilarity(cvDoc.Embedding, offerDoc.Embedding), nil
	}

	// Fallback: read the artifacts themselves.
	cvData, err := s.blobs.Get(ctx, s.bucket, cvKey)
	if err != nil {
		slog.Error("read cv blob failed", "job_id", jobID, "error", err)
		return "", "", 0, fmt.Errorf("%w: read cv", ErrStorageUnavailable)
	}
	cvText, err := extract.Text(cvData, cvFilename)
	if err != nil {
		slog.Error("cv text extraction failed", "job_id", jobID, "error", err)
		return "", "", 0, fmt.Errorf("%w: extract cv text", ErrGenerationFailed)
	}

	offerData, err := s.blobs.Get(ctx, s.bucket, jobkey.JobOfferKey(jobID))
	if err != nil {
		slog.Error("read job offer blob failed", "job_id", jobID, "error", err)
		return "", "", 0, fmt.Errorf("%w: read job offer", ErrStorageUnavailable)
	}

	return cvText, string(offerData), -1, nil
}

// cosineSimilarity returns the cosine of the angle between a and b, or -1
// when either vector is missing or the dimensions disagree.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
