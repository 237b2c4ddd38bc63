package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/kiranshivaraju/cvforge/internal/store"
	"github.com/kiranshivaraju/cvforge/pkg/models"
)

// --- shared fakes for pipeline tests ---

type fakeDocStore struct {
	mu       sync.Mutex
	docs     map[string]*models.Document
	failWith error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string]*models.Document)}
}

func (f *fakeDocStore) Ping(context.Context) error { return f.failWith }

func (f *fakeDocStore) UpsertDocument(_ context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	cp := *doc
	cp.ID = models.DocumentID(doc.JobID, doc.DocType)
	f.docs[cp.ID] = &cp
	return nil
}

func (f *fakeDocStore) GetDocument(_ context.Context, jobID, docType string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	doc, ok := f.docs[models.DocumentID(jobID, docType)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

type fakeCache struct {
	mu     sync.Mutex
	stages map[string]string
	kv     map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{stages: make(map[string]string), kv: make(map[string][]byte)}
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kv[key] = value
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.kv[key]
	return v, ok, nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.kv, key)
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }

func (f *fakeCache) SetJobStage(_ context.Context, jobID, stage string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages[jobID] = stage
	return nil
}

func (f *fakeCache) GetJobStage(_ context.Context, jobID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stages[jobID]
	return s, ok, nil
}

func (f *fakeCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kv[key] = append(f.kv[key], 1)
	return int64(len(f.kv[key])), nil
}
