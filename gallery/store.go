package gallery

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/poiesic/gallerit/core"
)

// Snapshot is one immutable published state of the gallery.
// Records are in insertion order. Callers must not modify a Snapshot.
type Snapshot struct {
	// Version increases by one with every successful mutation.
	Version uint64

	// Records holds the gallery contents in insertion order.
	Records []core.ImageRecord
}

// Store holds the ordered collection of enriched images.
//
// Every mutation copies the current snapshot, applies the change and
// publishes the result with a compare-and-swap, retrying if another writer
// got there first. Readers never block and always observe a complete
// snapshot, so an append from one batch can never erase an append from
// another.
type Store struct {
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty gallery.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: slog.Default().With("component", "gallery"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&Snapshot{Records: []core.ImageRecord{}})
	return s
}

// Snapshot returns the current published state.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// List returns the records in insertion order. The returned slice and its
// records are copies; later mutations of the store do not affect them.
func (s *Store) List() []core.ImageRecord {
	snap := s.current.Load()
	out := make([]core.ImageRecord, len(snap.Records))
	for i, r := range snap.Records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.current.Load().Records)
}

// Get returns a copy of the record with the given key.
func (s *Store) Get(key string) (core.ImageRecord, bool) {
	snap := s.current.Load()
	if i := indexOf(snap.Records, key); i >= 0 {
		return snap.Records[i].Clone(), true
	}
	return core.ImageRecord{}, false
}

// Append adds record at the end of the gallery.
// Returns core.ErrDuplicateKey if a record with the same key is present.
func (s *Store) Append(record core.ImageRecord) error {
	if err := core.ValidateImageRecord(&record); err != nil {
		return err
	}
	record = record.Clone()

	for {
		old := s.current.Load()
		if indexOf(old.Records, record.Key) >= 0 {
			return fmt.Errorf("%w: %s", core.ErrDuplicateKey, record.Key)
		}

		records := make([]core.ImageRecord, len(old.Records), len(old.Records)+1)
		copy(records, old.Records)
		records = append(records, record)

		if s.current.CompareAndSwap(old, &Snapshot{Version: old.Version + 1, Records: records}) {
			s.logger.Debug("appended image", "key", record.Key, "labels", len(record.Classifications))
			return nil
		}
	}
}

// Remove deletes the record with the given key and reports whether it was
// present. Removing an absent key is a no-op.
func (s *Store) Remove(key string) bool {
	for {
		old := s.current.Load()
		i := indexOf(old.Records, key)
		if i < 0 {
			return false
		}

		records := make([]core.ImageRecord, 0, len(old.Records)-1)
		records = append(records, old.Records[:i]...)
		records = append(records, old.Records[i+1:]...)

		if s.current.CompareAndSwap(old, &Snapshot{Version: old.Version + 1, Records: records}) {
			s.logger.Debug("removed image", "key", key)
			return true
		}
	}
}

// Retitle replaces the title of the record with the given key.
// Returns ErrNotFound if no such record exists.
func (s *Store) Retitle(key, title string) error {
	for {
		old := s.current.Load()
		i := indexOf(old.Records, key)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		records := make([]core.ImageRecord, len(old.Records))
		copy(records, old.Records)
		updated := records[i].Clone()
		updated.Title = title
		records[i] = updated

		if s.current.CompareAndSwap(old, &Snapshot{Version: old.Version + 1, Records: records}) {
			return nil
		}
	}
}

func indexOf(records []core.ImageRecord, key string) int {
	for i := range records {
		if records[i].Key == key {
			return i
		}
	}
	return -1
}
