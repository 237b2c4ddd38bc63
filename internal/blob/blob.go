// Package blob wraps the S3-compatible object store holding all pipeline
// artifacts. All storage operations go through the Store interface;
// implementations must be safe for concurrent use.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Store is the object storage interface. Writes are overwrite-semantics and
// reads are pure, so every operation is idempotent at the key level.
type Store interface {
	// EnsureBucket creates the bucket if it does not exist. Private access;
	// safe to call on every upload.
	EnsureBucket(ctx context.Context, bucket string) error
	// Put writes an object, replacing any previous object at the same key.
	Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	// Get reads a whole object into memory.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// Stat returns object metadata, or ErrObjectNotFound.
	Stat(ctx context.Context, bucket, key string) (ObjectInfo, error)
	// List returns all objects under the given key prefix.
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	// PresignedURL returns a time-limited GET URL for an object.
	PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
