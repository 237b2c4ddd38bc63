package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/kiranshivaraju/cvforge/internal/ai/mock"
	blobmock "github.com/kiranshivaraju/cvforge/internal/blob/mock"
	"github.com/kiranshivaraju/cvforge/pkg/jobkey"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

func newGenerateService(blobs *blobmock.MockStore, docs *fakeDocStore, adapter models.Adapter) *GenerateService {
	svc := NewGenerateService(blobs, docs, map[jobkey.Variant]models.Adapter{
		jobkey.VariantStandard:  adapter,
		jobkey.VariantFineTuned: adapter,
	}, jobkey.Bucket, time.Hour, 5*time.Second)
	// No embedding worker in these tests; do not sit in the wait loop.
	svc.docAttempts = 1
	svc.docDelay = 0
	return svc
}

// seedSubmission writes both input artifacts for a fresh job and returns its ID.
func seedSubmission(t *testing.T, blobs *blobmock.MockStore) string {
	t.Helper()
	ctx := context.Background()
	jobID := jobkey.Mint()

	cv := []byte("Plain text CV. Go, Postgres, ten years.")
	require.NoError(t, blobs.Put(ctx, jobkey.Bucket, jobkey.CVKey(jobID, "resume.txt"),
		bytes.NewReader(cv), int64(len(cv)), "text/plain"))

	offer := []byte("Senior backend engineer, Go, distributed systems")
	require.NoError(t, blobs.Put(ctx, jobkey.Bucket, jobkey.JobOfferKey(jobID),
		bytes.NewReader(offer), int64(len(offer)), "text/plain; charset=utf-8"))

	return jobID
}

func TestGenerate_Success(t *testing.T) {
	blobs := blobmock.NewMockStore()
	svc := newGenerateService(blobs, newFakeDocStore(), aimock.NewMockAdapter())
	jobID := seedSubmission(t, blobs)

	url, err := svc.Generate(context.Background(), jobID, jobkey.VariantStandard)
	require.NoError(t, err)
	assert.Contains(t, url, jobkey.GeneratedKey(jobID, jobkey.VariantStandard))

	out, err := blobs.Get(context.Background(), jobkey.Bucket, jobkey.GeneratedKey(jobID, jobkey.VariantStandard))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}

func TestGenerate_PrefersStoredDocuments(t *testing.T) {
	blobs := blobmock.NewMockStore()
	docs := newFakeDocStore()
	jobID := seedSubmission(t, blobs)

	require.NoError(t, docs.UpsertDocument(context.Background(), &models.Document{
		JobID: jobID, DocType: models.DocTypeCV,
		Content: "cv text from documents", Embedding: []float32{1, 0},
	}))
	require.NoError(t, docs.UpsertDocument(context.Background(), &models.Document{
		JobID: jobID, DocType: models.DocTypeJobOffer,
		Content: "offer text from documents", Embedding: []float32{1, 0},
	}))

	var got models.AdaptRequest
	adapter := &aimock.MockAdapter{
		Name_: "capture",
		AdaptCVFunc: func(_ context.Context, req models.AdaptRequest) (string, error) {
			got = req
			return "adapted", nil
		},
	}
	svc := newGenerateService(blobs, docs, adapter)

	_, err := svc.Generate(context.Background(), jobID, jobkey.VariantStandard)
	require.NoError(t, err)
	assert.Equal(t, "cv text from documents", got.CVText)
	assert.Equal(t, "offer text from documents", got.JobOfferText)
	assert.InDelta(t, 1.0, got.Similarity, 1e-9)
}

func TestGenerate_FallsBackToBlobs(t *testing.T) {
	blobs := blobmock.NewMockStore()
	jobID := seedSubmission(t, blobs)

	var got models.AdaptRequest
	adapter := &aimock.MockAdapter{
		Name_: "capture",
		AdaptCVFunc: func(_ context.Context, req models.AdaptRequest) (string, error) {
			got = req
			return "adapted", nil
		},
	}
	svc := newGenerateService(blobs, newFakeDocStore(), adapter)

	_, err := svc.Generate(context.Background(), jobID, jobkey.VariantStandard)
	require.NoError(t, err)
	assert.Equal(t, "Plain text CV. Go, Postgres, ten years.", got.CVText)
	assert.Negative(t, got.Similarity, "no embeddings means no similarity")
}

func TestGenerate_NeverIssuedJobID(t *testing.T) {
	svc := newGenerateService(blobmock.NewMockStore(), newFakeDocStore(), aimock.NewMockAdapter())

	_, err := svc.Generate(context.Background(), "0", jobkey.VariantStandard)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestGenerate_MalformedJobID(t *testing.T) {
	svc := newGenerateService(blobmock.NewMockStore(), newFakeDocStore(), aimock.NewMockAdapter())

	_, err := svc.Generate(context.Background(), "../etc/passwd", jobkey.VariantStandard)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestGenerate_PartialSubmission(t *testing.T) {
	ctx := context.Background()

	// CV present, job offer missing.
	blobs := blobmock.NewMockStore()
	jobID := jobkey.Mint()
	cv := []byte("cv only")
	require.NoError(t, blobs.Put(ctx, jobkey.Bucket, jobkey.CVKey(jobID, "resume.txt"),
		bytes.NewReader(cv), int64(len(cv)), "text/plain"))

	svc := newGenerateService(blobs, newFakeDocStore(), aimock.NewMockAdapter())
	_, err := svc.Generate(ctx, jobID, jobkey.VariantStandard)
	assert.ErrorIs(t, err, ErrJobNotFound)

	// Job offer present, CV missing.
	blobs2 := blobmock.NewMockStore()
	jobID2 := jobkey.Mint()
	offer := []byte("offer only")
	require.NoError(t, blobs2.Put(ctx, jobkey.Bucket, jobkey.JobOfferKey(jobID2),
		bytes.NewReader(offer), int64(len(offer)), "text/plain"))

	svc2 := newGenerateService(blobs2, newFakeDocStore(), aimock.NewMockAdapter())
	_, err = svc2.Generate(ctx, jobID2, jobkey.VariantStandard)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestGenerate_AdapterFailure(t *testing.T) {
	blobs := blobmock.NewMockStore()
	jobID := seedSubmission(t, blobs)
	svc := newGenerateService(blobs, newFakeDocStore(), aimock.NewFailingAdapter(errors.New("model exploded")))

	_, err := svc.Generate(context.Background(), jobID, jobkey.VariantStandard)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.NotContains(t, err.Error(), "model exploded")

	// Inputs untouched: a retry with a healthy adapter succeeds.
	retry := newGenerateService(blobs, newFakeDocStore(), aimock.NewMockAdapter())
	_, err = retry.Generate(context.Background(), jobID, jobkey.VariantStandard)
	assert.NoError(t, err)
}

func TestGenerate_ReinvocationOverwritesSameKey(t *testing.T) {
	blobs := blobmock.NewMockStore()
	jobID := seedSubmission(t, blobs)
	svc := newGenerateService(blobs, newFakeDocStore(), aimock.NewMockAdapter())

	url1, err := svc.Generate(context.Background(), jobID, jobkey.VariantStandard)
	require.NoError(t, err)
	url2, err := svc.Generate(context.Background(), jobID, jobkey.VariantStandard)
	require.NoError(t, err)

	assert.Equal(t, url1, url2, "output location is deterministic")

	objs, err := blobs.List(context.Background(), jobkey.Bucket, "generated/")
	require.NoError(t, err)
	assert.Len(t, objs, 1)
}

func TestGenerate_VariantQualifiedOutputs(t *testing.T) {
	blobs := blobmock.NewMockStore()
	jobID := seedSubmission(t, blobs)
	svc := newGenerateService(blobs, newFakeDocStore(), aimock.NewMockAdapter())

	_, err := svc.Generate(context.Background(), jobID, jobkey.VariantStandard)
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), jobID, jobkey.VariantFineTuned)
	require.NoError(t, err)

	objs, err := blobs.List(context.Background(), jobkey.Bucket, "generated/")
	require.NoError(t, err)
	assert.Len(t, objs, 2, "each variant owns its own output key")
}

func TestGenerate_JobIsolation(t *testing.T) {
	blobs := blobmock.NewMockStore()
	jobA := seedSubmission(t, blobs)
	jobB := seedSubmission(t, blobs)
	svc := newGenerateService(blobs, newFakeDocStore(), aimock.NewMockAdapter())

	_, err := svc.Generate(context.Background(), jobA, jobkey.VariantStandard)
	require.NoError(t, err)

	_, err = blobs.Get(context.Background(), jobkey.Bucket, jobkey.GeneratedKey(jobB, jobkey.VariantStandard))
	assert.Error(t, err, "job B must have no output")
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 3}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, -1.0, cosineSimilarity(nil, []float32{1}))
	assert.Equal(t, -1.0, cosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, -1.0, cosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}
