package storage

import (
	"context"
	"io"

	"github.com/poiesic/gallerit/core"
)

// BlobRepository keeps captured pixel bytes behind opaque URLs for the
// lifetime of the process. A URL stays valid until it is revoked.
type BlobRepository interface {
	// Put stores data and returns a new URL referring to it.
	// Every call mints a distinct URL, even for identical bytes.
	// Returns ErrEmptyBlob if data is empty.
	Put(ctx context.Context, mimeType string, data []byte) (string, error)

	// Open returns a reader over the bytes behind url.
	// Returns ErrNotFound if the URL is unknown or revoked, and
	// ErrCorruptBlob if the stored bytes no longer match their digest.
	Open(ctx context.Context, url string) (io.ReadCloser, error)

	// Stat returns metadata for url without reading the bytes.
	// Returns ErrNotFound if the URL is unknown or revoked.
	Stat(ctx context.Context, url string) (*core.BlobInfo, error)

	// Revoke releases the bytes behind url. Revoking an unknown URL is a no-op.
	Revoke(ctx context.Context, url string) error

	// Close closes the storage backend and releases resources.
	Close() error
}
