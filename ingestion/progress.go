package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/gallerit/core"
)

// ProgressTracker reports enrichment progress to a writer.
// It implements Monitor; totals grow as batches start, so one tracker can
// follow several overlapping batches.
type ProgressTracker struct {
	writer         io.Writer
	reportInterval int

	mu           sync.Mutex
	total        int
	done         int
	failed       int
	lastReported int
	active       int
	startTime    time.Time
}

var _ Monitor = (*ProgressTracker)(nil)

// NewProgressTracker creates a new progress tracker.
// writer: where to write progress output (typically os.Stderr)
// reportInterval: report progress every N images
func NewProgressTracker(writer io.Writer, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		reportInterval: reportInterval,
	}
}

// BatchStarted adds the batch to the running total.
func (p *ProgressTracker) BatchStarted(size int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active == 0 && p.done == p.total {
		p.startTime = time.Now()
		p.total, p.done, p.failed, p.lastReported = 0, 0, 0, 0
	}
	p.active++
	p.total += size
}

// ItemEnriched counts one finished image.
func (p *ProgressTracker) ItemEnriched(_ core.ImageRecord, _ time.Duration) {
	p.increment(false)
}

// ItemFailed counts one skipped image.
func (p *ProgressTracker) ItemFailed(_ string, _ error) {
	p.increment(true)
}

// BatchFinished prints the final line once no batch is running.
func (p *ProgressTracker) BatchFinished(_, _ int, _ time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active--
	if p.active > 0 {
		return
	}
	p.done = p.total
	p.report()
	fmt.Fprintln(p.writer) // Print newline after final progress
}

// Elapsed returns the time since the current run of batches began.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startTime.IsZero() {
		return 0
	}
	return time.Since(p.startTime)
}

func (p *ProgressTracker) increment(failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done < p.total {
		p.done++
	}
	if failed {
		p.failed++
	}

	// Report if we've crossed a report interval
	if p.done-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.done
	}
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.done) / elapsed.Seconds()
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rLabeling: %d/%d (%.1f%%), %d failed - %.1f images/s",
		p.done, p.total, percentage, p.failed, rate)
}
