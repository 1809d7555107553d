package search

import (
	"log/slog"
	"time"

	"github.com/poiesic/gallerit/core"
)

// Result is a matching record with its score. Lower scores are better;
// 0 is an exact match.
type Result struct {
	Record core.ImageRecord
	Score  float64
	Field  Field
}

// Searcher ranks gallery records against free-text queries.
// It holds configuration only; every call indexes the records it is given,
// so results always reflect the current gallery.
type Searcher struct {
	threshold float64
	limit     int
	monitor   SearchMonitor
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithThreshold sets the largest edit ratio accepted as an approximate match.
// Default is DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(s *Searcher) error {
		if threshold < 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		s.threshold = threshold
		return nil
	}
}

// WithLimit caps the number of results. Zero means unlimited.
func WithLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit < 0 {
			return ErrInvalidLimit
		}
		s.limit = limit
		return nil
	}
}

// WithMonitor sets the monitor notified about every search.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		if monitor != nil {
			s.monitor = monitor
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(opts ...Option) (*Searcher, error) {
	s := &Searcher{
		threshold: DefaultThreshold,
		monitor:   &noopMonitor{},
		logger:    slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Rank returns the records matching query with their scores, best first.
// Records with equal scores keep their order in records. If no field is
// enabled in cfg the result is empty.
func (s *Searcher) Rank(records []core.ImageRecord, cfg core.FieldConfig, query string) []Result {
	start := time.Now()
	s.monitor.Start(query, len(records))

	ix := NewIndex(records, cfg)
	s.monitor.IndexBuilt(ix.Terms(FieldTitle), ix.Terms(FieldClassifications))

	hits := ix.Match(query, s.threshold)
	if s.limit > 0 && len(hits) > s.limit {
		hits = hits[:s.limit]
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Record: records[h.Position], Score: h.Score, Field: h.Field}
	}

	elapsed := time.Since(start)
	s.monitor.Finish(query, len(results), elapsed)
	s.logger.Debug("search finished", "query", query, "records", len(records), "hits", len(results), "duration", elapsed)
	return results
}

// Search returns the records matching query, best first. An empty query
// returns records unchanged whatever the fields. Otherwise, with no field
// enabled the result is empty, and a query that is blank after normalization
// returns records unchanged.
func (s *Searcher) Search(records []core.ImageRecord, cfg core.FieldConfig, query string) []core.ImageRecord {
	if query == "" {
		return records
	}
	if !cfg.Any() {
		return []core.ImageRecord{}
	}
	if normalize(query) == "" {
		return records
	}
	results := s.Rank(records, cfg, query)
	out := make([]core.ImageRecord, len(results))
	for i, r := range results {
		out[i] = r.Record
	}
	return out
}

// Display returns the list to show for query: all records in gallery order
// when query is empty, the ranked matches otherwise.
func (s *Searcher) Display(records []core.ImageRecord, cfg core.FieldConfig, query string) []core.ImageRecord {
	if query == "" {
		return records
	}
	return s.Search(records, cfg, query)
}

var defaultSearcher = &Searcher{
	threshold: DefaultThreshold,
	monitor:   &noopMonitor{},
	logger:    slog.Default().With("component", "search"),
}

// Search ranks records against query with default settings.
func Search(records []core.ImageRecord, cfg core.FieldConfig, query string) []core.ImageRecord {
	return defaultSearcher.Search(records, cfg, query)
}

// Display returns records unchanged for an empty query and the ranked
// matches otherwise, using default settings.
func Display(records []core.ImageRecord, cfg core.FieldConfig, query string) []core.ImageRecord {
	return defaultSearcher.Display(records, cfg, query)
}
