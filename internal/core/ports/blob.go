package ports

import (
	"context"
	"io"
)

// ObjectInfo describes one stored blob.
type ObjectInfo struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// BlobStore persists accepted file bytes under generated keys. Implementations
// are interchangeable: a local filesystem layout and a remote blob gateway.
type BlobStore interface {
	// Store writes the object and returns its retrieval location. The call
	// must complete (or fail) before the caller proceeds; a store failure
	// must never be silently skipped.
	Store(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]ObjectInfo, error)
	// PublicURL constructs the browser-accessible URL for a key.
	PublicURL(key string) string
}
