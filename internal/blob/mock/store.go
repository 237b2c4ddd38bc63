// Package mock provides an in-memory blob.Store for testing.
package mock

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kiranshivaraju/cvforge/internal/blob"
)

type object struct {
	data        []byte
	contentType string
}

// MockStore satisfies blob.Store with an in-memory map. Safe for concurrent
// use. FailWith, when set, makes every operation return that error.
type MockStore struct {
	mu       sync.Mutex
	buckets  map[string]map[string]object
	FailWith error
}

func NewMockStore() *MockStore {
	return &MockStore{buckets: make(map[string]map[string]object)}
}

func (s *MockStore) EnsureBucket(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]object)
	}
	return nil
}

func (s *MockStore) Put(_ context.Context, bucket, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]object)
	}
	s.buckets[bucket][key] = object{data: data, contentType: contentType}
	return nil
}

func (s *MockStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, blob.ErrObjectNotFound
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

func (s *MockStore) Stat(_ context.Context, bucket, key string) (blob.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return blob.ObjectInfo{}, s.FailWith
	}
	obj, ok := s.buckets[bucket][key]
	if !ok {
		return blob.ObjectInfo{}, blob.ErrObjectNotFound
	}
	return blob.ObjectInfo{Key: key, Size: int64(len(obj.data)), ContentType: obj.contentType}, nil
}

func (s *MockStore) List(_ context.Context, bucket, prefix string) ([]blob.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []blob.ObjectInfo
	for key, obj := range s.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			out = append(out, blob.ObjectInfo{
				Key:         key,
				Size:        int64(len(obj.data)),
				ContentType: obj.contentType,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MockStore) PresignedURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return "", s.FailWith
	}
	if _, ok := s.buckets[bucket][key]; !ok {
		return "", blob.ErrObjectNotFound
	}
	return fmt.Sprintf("https://blob.test/%s/%s", bucket, key), nil
}

func (s *MockStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FailWith
}

// Keys returns all keys in a bucket, sorted. Test helper.
func (s *MockStore) Keys(bucket string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.buckets[bucket]))
	for k := range s.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ blob.Store = (*MockStore)(nil)
