package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/gallerit/core"
	"github.com/poiesic/gallerit/search"
)

func TestNewGalleryMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewGalleryMetrics(registry)
	require.NoError(t, err)
	require.NotNil(t, m)

	// Registering the same collector twice fails.
	_, err = NewGalleryMetrics(registry)
	assert.Error(t, err)
}

func TestReason(t *testing.T) {
	testCases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: boom", core.ErrClassifierLoad), ReasonClassifierLoad},
		{fmt.Errorf("%w: bad header", core.ErrDecode), ReasonDecode},
		{fmt.Errorf("%w: rejected", core.ErrClassification), ReasonClassification},
		{core.ErrDuplicateKey, ReasonDuplicate},
		{fmt.Errorf("%w: %w", core.ErrInvalidImageRecord, core.ErrEmptyKey), ReasonInvalid},
		{context.Canceled, ReasonCancelled},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), ReasonCancelled},
		{errors.New("mystery"), ReasonOther},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, Reason(tc.err))
		})
	}
}

func TestEnrichmentMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewGalleryMetrics(registry)
	require.NoError(t, err)

	m.BatchStarted(3)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BatchesInflight))

	m.ItemEnriched(core.ImageRecord{Key: "k1", Classifications: []string{"sky", "cloud"}}, 20*time.Millisecond)
	m.ItemEnriched(core.ImageRecord{Key: "k2", Classifications: []string{}}, 10*time.Millisecond)
	m.ItemFailed("k3", fmt.Errorf("%w: truncated", core.ErrDecode))
	m.BatchFinished(2, 1, 50*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.BatchesTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.BatchesInflight))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ImagesEnriched))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ImagesFailed.WithLabelValues(ReasonDecode)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ImagesFailed.WithLabelValues(ReasonClassification)))

	assert.Equal(t, 1, testutil.CollectAndCount(m.EnrichDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BatchDuration))
}

func TestSearchMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewGalleryMetrics(registry)
	require.NoError(t, err)

	s, err := search.NewSearcher(search.WithMonitor(m))
	require.NoError(t, err)

	records := []core.ImageRecord{
		{URL: "blob:1", Key: "k1", Title: "cat.png", Classifications: []string{"tabby", "cat"}},
		{URL: "blob:2", Key: "k2", Title: "dog.png", Classifications: []string{"dog"}},
	}
	got := s.Search(records, core.DefaultFieldConfig(), "cat")
	require.Len(t, got, 1)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchesTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.IndexedTerms.WithLabelValues("title")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.IndexedTerms.WithLabelValues("classifications")))

	count, err := testutil.GatherAndCount(registry, "gallerit_search_duration_seconds", "gallerit_search_results")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
