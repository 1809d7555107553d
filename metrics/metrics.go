// Package metrics provides Prometheus metrics for gallery enrichment and search.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/poiesic/gallerit/core"
	"github.com/poiesic/gallerit/ingestion"
	"github.com/poiesic/gallerit/search"
)

// Error kinds used as the "reason" label of failed enrichments.
const (
	ReasonClassifierLoad = "classifier_load"
	ReasonDecode         = "decode"
	ReasonClassification = "classification"
	ReasonDuplicate      = "duplicate_key"
	ReasonInvalid        = "invalid_record"
	ReasonCancelled      = "cancelled"
	ReasonOther          = "other"
)

// GalleryMetrics contains all Prometheus metrics related to enrichment and search.
// It implements ingestion.Monitor and search.SearchMonitor.
type GalleryMetrics struct {
	BatchesTotal    prometheus.Counter
	BatchesInflight prometheus.Gauge
	ImagesEnriched  prometheus.Counter
	ImagesFailed    *prometheus.CounterVec
	LabelsPerImage  prometheus.Histogram
	EnrichDuration  prometheus.Histogram
	BatchDuration   prometheus.Histogram
	SearchesTotal   prometheus.Counter
	SearchDuration  prometheus.Histogram
	SearchResults   prometheus.Histogram
	IndexedTerms    *prometheus.GaugeVec
	registry        prometheus.Registerer
}

var (
	_ ingestion.Monitor    = (*GalleryMetrics)(nil)
	_ search.SearchMonitor = (*GalleryMetrics)(nil)
)

// NewGalleryMetrics creates a new instance of GalleryMetrics.
// It returns an error if metric registration fails.
func NewGalleryMetrics(registry prometheus.Registerer) (*GalleryMetrics, error) {
	m := &GalleryMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize gallery metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register gallery metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for GalleryMetrics.
func (m *GalleryMetrics) initMetrics() error {
	m.BatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallerit_batches_total",
		Help: "Total number of enrichment batches started.",
	})

	m.BatchesInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gallerit_batches_inflight",
		Help: "Number of enrichment batches currently running.",
	})

	m.ImagesEnriched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallerit_images_enriched_total",
		Help: "Total number of images labeled and published to the gallery.",
	})

	m.ImagesFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gallerit_images_failed_total",
		Help: "Total number of images skipped during enrichment, by reason.",
	}, []string{"reason"})

	m.LabelsPerImage = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallerit_labels_per_image",
		Help:    "Number of classification labels attached to each enriched image.",
		Buckets: prometheus.LinearBuckets(0, 2, 8),
	})

	m.EnrichDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallerit_enrich_duration_seconds",
		Help:    "Time spent decoding and classifying a single image.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	m.BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallerit_batch_duration_seconds",
		Help:    "Time spent enriching a whole batch.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})

	m.SearchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gallerit_searches_total",
		Help: "Total number of fuzzy searches run.",
	})

	m.SearchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallerit_search_duration_seconds",
		Help:    "Time spent indexing and ranking records for one query.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	m.SearchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gallerit_search_results",
		Help:    "Number of records returned per search.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	m.IndexedTerms = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gallerit_search_indexed_terms",
		Help: "Distinct values indexed by the most recent search, by field.",
	}, []string{"field"})

	return nil
}

// BatchStarted records the start of an enrichment batch.
func (m *GalleryMetrics) BatchStarted(_ int) {
	m.BatchesTotal.Inc()
	m.BatchesInflight.Inc()
}

// ItemEnriched records a successfully enriched image.
func (m *GalleryMetrics) ItemEnriched(record core.ImageRecord, elapsed time.Duration) {
	m.ImagesEnriched.Inc()
	m.LabelsPerImage.Observe(float64(len(record.Classifications)))
	m.EnrichDuration.Observe(elapsed.Seconds())
}

// ItemFailed records a skipped image under the reason derived from err.
func (m *GalleryMetrics) ItemFailed(_ string, err error) {
	m.ImagesFailed.WithLabelValues(Reason(err)).Inc()
}

// BatchFinished records the end of an enrichment batch.
func (m *GalleryMetrics) BatchFinished(_, _ int, elapsed time.Duration) {
	m.BatchesInflight.Dec()
	m.BatchDuration.Observe(elapsed.Seconds())
}

// Start records the start of a search.
func (m *GalleryMetrics) Start(_ string, _ int) {
	m.SearchesTotal.Inc()
}

// IndexBuilt records the size of the index built for a search.
func (m *GalleryMetrics) IndexBuilt(titles, labels int) {
	m.IndexedTerms.WithLabelValues(search.FieldTitle.String()).Set(float64(titles))
	m.IndexedTerms.WithLabelValues(search.FieldClassifications.String()).Set(float64(labels))
}

// Finish records the outcome of a search.
func (m *GalleryMetrics) Finish(_ string, hits int, elapsed time.Duration) {
	m.SearchDuration.Observe(elapsed.Seconds())
	m.SearchResults.Observe(float64(hits))
}

// Reason maps an enrichment error to a low-cardinality label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, core.ErrClassifierLoad):
		return ReasonClassifierLoad
	case errors.Is(err, core.ErrDecode):
		return ReasonDecode
	case errors.Is(err, core.ErrClassification):
		return ReasonClassification
	case errors.Is(err, core.ErrDuplicateKey):
		return ReasonDuplicate
	case errors.Is(err, core.ErrInvalidImageRecord):
		return ReasonInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCancelled
	}
	return ReasonOther
}

// Collect implements the prometheus.Collector interface.
func (m *GalleryMetrics) Collect(ch chan<- prometheus.Metric) {
	m.BatchesTotal.Collect(ch)
	m.BatchesInflight.Collect(ch)
	m.ImagesEnriched.Collect(ch)
	m.ImagesFailed.Collect(ch)
	m.LabelsPerImage.Collect(ch)
	m.EnrichDuration.Collect(ch)
	m.BatchDuration.Collect(ch)
	m.SearchesTotal.Collect(ch)
	m.SearchDuration.Collect(ch)
	m.SearchResults.Collect(ch)
	m.IndexedTerms.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *GalleryMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.BatchesTotal.Describe(ch)
	m.BatchesInflight.Describe(ch)
	m.ImagesEnriched.Describe(ch)
	m.ImagesFailed.Describe(ch)
	m.LabelsPerImage.Describe(ch)
	m.EnrichDuration.Describe(ch)
	m.BatchDuration.Describe(ch)
	m.SearchesTotal.Describe(ch)
	m.SearchDuration.Describe(ch)
	m.SearchResults.Describe(ch)
	m.IndexedTerms.Describe(ch)
}
