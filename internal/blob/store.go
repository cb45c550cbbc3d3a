// Package blob provides the object store abstraction the artifact uploader
// writes deployments to. Production uses an S3-compatible backend; local
// development and tests use the filesystem and memory implementations.
package blob

import (
	"context"
)

// PutOptions carries per-object metadata set at write time.
type PutOptions struct {
	ContentType  string
	CacheControl string
}

// Store is a flat key/value object store.
type Store interface {
	// Put stores an object under the given key, replacing any existing one.
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error

	// Get retrieves an object. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// ErrNotFound is returned when an object doesn't exist.
type ErrNotFound struct {
	Key string
}

func (e ErrNotFound) Error() string {
	return "object not found: " + e.Key
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
