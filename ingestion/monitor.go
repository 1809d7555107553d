package ingestion

import (
	"time"

	"github.com/poiesic/gallerit/core"
)

// Monitor provides hooks to observe enrichment.
// Hooks may be called from several batches concurrently.
type Monitor interface {
	BatchStarted(size int)
	ItemEnriched(record core.ImageRecord, elapsed time.Duration)
	ItemFailed(key string, err error)
	BatchFinished(enriched, failed int, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) BatchStarted(_ int)                              {}
func (n *noopMonitor) ItemEnriched(_ core.ImageRecord, _ time.Duration) {}
func (n *noopMonitor) ItemFailed(_ string, _ error)                     {}
func (n *noopMonitor) BatchFinished(_, _ int, _ time.Duration)          {}

// monitors fans every hook out to several monitors.
type monitors []Monitor

// Monitors combines several monitors into one.
func Monitors(ms ...Monitor) Monitor {
	out := make(monitors, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (ms monitors) BatchStarted(size int) {
	for _, m := range ms {
		m.BatchStarted(size)
	}
}

func (ms monitors) ItemEnriched(record core.ImageRecord, elapsed time.Duration) {
	for _, m := range ms {
		m.ItemEnriched(record, elapsed)
	}
}

func (ms monitors) ItemFailed(key string, err error) {
	for _, m := range ms {
		m.ItemFailed(key, err)
	}
}

func (ms monitors) BatchFinished(enriched, failed int, elapsed time.Duration) {
	for _, m := range ms {
		m.BatchFinished(enriched, failed, elapsed)
	}
}
