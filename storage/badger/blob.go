package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/poiesic/gallerit/core"
	"github.com/poiesic/gallerit/storage"
)

// BlobRepository implements storage.BlobRepository for BadgerDB.
type BlobRepository struct {
	backend *Backend
	owned   bool
}

var _ storage.BlobRepository = (*BlobRepository)(nil)

// NewBlobRepository creates a BlobRepository on an existing backend.
// The caller remains responsible for closing the backend.
func NewBlobRepository(backend *Backend) (*BlobRepository, error) {
	if backend == nil {
		return nil, errors.New("badger backend required")
	}
	return &BlobRepository{backend: backend}, nil
}

// Close closes the backend if the repository owns it.
func (r *BlobRepository) Close() error {
	if r.owned {
		return r.backend.Close()
	}
	return nil
}

// Put stores data under a freshly minted URL.
func (r *BlobRepository) Put(ctx context.Context, mimeType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", storage.ErrEmptyBlob
	}

	id, url := newBlobID()
	info := &core.BlobInfo{
		MIMEType:  mimeType,
		Size:      int64(len(data)),
		Digest:    core.DigestFromContent(data),
		CreatedAt: time.Now().UTC().UnixMicro(),
	}

	err := r.backend.Update(func(tx *badger.Txn) error {
		if err := tx.Set(makeBlobMetaKey(id), storage.MarshalBlobInfo(info)); err != nil {
			return err
		}
		return tx.Set(makeBlobDataKey(id), data)
	})
	if err != nil {
		return "", err
	}
	r.backend.logger.Debug("stored blob", "url", url, "mime", mimeType, "size", info.Size)
	return url, nil
}

// Open returns a reader over a copy of the bytes behind url.
func (r *BlobRepository) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := parseBlobURL(url)
	if err != nil {
		return nil, err
	}

	var info *core.BlobInfo
	var data []byte
	err = r.backend.View(func(tx *badger.Txn) error {
		info, err = readBlobInfo(tx, id)
		if err != nil {
			return err
		}
		item, err := tx.Get(makeBlobDataKey(id))
		if err != nil {
			return notFound(err)
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	if core.DigestFromContent(data) != info.Digest {
		return nil, fmt.Errorf("%w: %s", storage.ErrCorruptBlob, url)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Stat returns metadata for url.
func (r *BlobRepository) Stat(ctx context.Context, url string) (*core.BlobInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := parseBlobURL(url)
	if err != nil {
		return nil, err
	}
	var info *core.BlobInfo
	err = r.backend.View(func(tx *badger.Txn) error {
		info, err = readBlobInfo(tx, id)
		return err
	})
	return info, err
}

// Revoke deletes the bytes and metadata behind url.
func (r *BlobRepository) Revoke(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := parseBlobURL(url)
	if err != nil {
		return err
	}
	err = r.backend.Update(func(tx *badger.Txn) error {
		if err := tx.Delete(makeBlobMetaKey(id)); err != nil {
			return err
		}
		return tx.Delete(makeBlobDataKey(id))
	})
	if err != nil {
		return err
	}
	r.backend.logger.Debug("revoked blob", "url", url)
	return nil
}

// readBlobInfo reads blob metadata within a transaction.
func readBlobInfo(tx *badger.Txn, id uuid.UUID) (*core.BlobInfo, error) {
	item, err := tx.Get(makeBlobMetaKey(id))
	if err != nil {
		return nil, notFound(err)
	}
	var info *core.BlobInfo
	err = item.Value(func(val []byte) error {
		info, err = storage.UnmarshalBlobInfo(val)
		return err
	})
	return info, err
}

func notFound(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return storage.ErrNotFound
	}
	return err
}
