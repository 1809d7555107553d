package badger

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/poiesic/gallerit/storage"
)

const (
	maxConflictRetries = 3

	// Pixel data is already compressed and read once per enrichment, so
	// the caches only need to hold keys and block indexes.
	defaultBlockCacheSize = 8 << 20
	defaultIndexCacheSize = 4 << 20
)

// Backend is an in-memory BadgerDB instance holding blob bytes and metadata.
// Nothing is ever written to disk.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// BackendOption configures the badger options of a Backend.
type BackendOption func(*badger.Options)

// WithBlockCacheSize sets the block cache size in bytes.
func WithBlockCacheSize(size int64) BackendOption {
	return func(o *badger.Options) {
		o.BlockCacheSize = size
	}
}

// WithMemTableSize sets the memtable size in bytes. Blobs larger than a
// memtable cannot be stored.
func WithMemTableSize(size int64) BackendOption {
	return func(o *badger.Options) {
		o.MemTableSize = size
	}
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenMemoryBackend opens a purely in-memory BadgerDB.
func OpenMemoryBackend(opts ...BackendOption) (*Backend, error) {
	logger := slog.Default().With("component", "badger")

	bopts := badger.DefaultOptions("").WithInMemory(true)
	bopts.Logger = &badgerLoggerAdapter{logger: logger}
	bopts.Compression = options.None
	bopts.NumVersionsToKeep = 1
	bopts.BlockCacheSize = defaultBlockCacheSize
	bopts.IndexCacheSize = defaultIndexCacheSize
	for _, opt := range opts {
		opt(&bopts)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return &Backend{db: db, logger: logger}, nil
}

// Close releases the database and every blob it holds.
func (b *Backend) Close() error {
	if b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// View runs fn in a read-only transaction.
func (b *Backend) View(fn func(tx *badger.Txn) error) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	return b.db.View(fn)
}

// Update runs fn in a read-write transaction and commits it if fn succeeds.
// Conflicting concurrent writes are retried a bounded number of times.
func (b *Backend) Update(fn func(tx *badger.Txn) error) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = b.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		b.logger.Debug("transaction conflict, retrying", "attempt", attempt+1)
	}
	return err
}
