package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/gallerit/ai"
	"github.com/poiesic/gallerit/core"
)

const releaseTimeout = 5 * time.Second

// ClassifierSource hands out a ready classifier. *ai.Handle satisfies it.
type ClassifierSource interface {
	Acquire(ctx context.Context) (ai.Classifier, error)
}

// Store receives enriched records. *gallery.Store satisfies it.
type Store interface {
	Append(record core.ImageRecord) error
}

// Pipeline turns captured images into labeled gallery records.
//
// Within one batch images are processed strictly one after another, in
// input order. Batches handed to Submit run on a worker pool and may
// overlap each other; the store is the only state they share.
type Pipeline struct {
	store       Store
	classifiers ClassifierSource
	pixels      PixelSource
	pool        *ants.Pool
	monitor     Monitor
	discard     func(ctx context.Context, img core.CapturedImage)
	logger      *slog.Logger
	now         func() time.Time

	inflight sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets how many submitted batches may run at once.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMonitor sets the monitor notified about batch and item progress.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) error {
		if monitor != nil {
			p.monitor = monitor
		}
		return nil
	}
}

// WithDiscard sets a function called for every image that is skipped because
// it could not be labeled. Skipped images are never retried, so discard is the
// place to release their pixels. It is not called for duplicate keys or for
// images left unprocessed by a cancelled batch.
func WithDiscard(discard func(ctx context.Context, img core.CapturedImage)) Option {
	return func(p *Pipeline) error {
		p.discard = discard
		return nil
	}
}

// NewPipeline creates a new enrichment pipeline.
func NewPipeline(store Store, classifiers ClassifierSource, pixels PixelSource, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if classifiers == nil {
		return nil, ErrClassifierSourceRequired
	}
	if pixels == nil {
		return nil, ErrPixelSourceRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:       store,
		classifiers: classifiers,
		pixels:      pixels,
		pool:        pool,
		monitor:     &noopMonitor{},
		logger:      slog.Default().With("component", "ingestion"),
		now:         func() time.Time { return time.Now().UTC() },
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Enrich labels every image of batch and appends each result to the store
// as soon as it is ready. It returns after the whole batch was attempted.
//
// An image that cannot be labeled is skipped and reported in the returned
// *BatchError; the rest of the batch continues. A key already present in the
// store aborts the batch with core.ErrDuplicateKey. Cancelling ctx aborts the
// batch with ctx's error. Images published before an abort stay published.
func (p *Pipeline) Enrich(ctx context.Context, batch []core.CapturedImage) error {
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	p.monitor.BatchStarted(len(batch))
	p.logger.Debug("batch started", "size", len(batch))

	enriched := 0
	var failed []*ItemError
	finish := func() {
		elapsed := time.Since(start)
		p.monitor.BatchFinished(enriched, len(failed), elapsed)
		p.logger.Info("batch finished", "enriched", enriched, "failed", len(failed), "duration", elapsed)
	}

	for _, img := range batch {
		if err := ctx.Err(); err != nil {
			finish()
			return err
		}

		itemStart := time.Now()
		record, err := p.enrichOne(ctx, img)
		if err == nil {
			err = p.store.Append(record)
			if errors.Is(err, core.ErrDuplicateKey) {
				p.logger.Error("duplicate key, aborting batch", "key", img.Key)
				p.monitor.ItemFailed(img.Key, err)
				failed = append(failed, &ItemError{Key: img.Key, Err: err})
				finish()
				return err
			}
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				finish()
				return ctxErr
			}
			p.logger.Warn("skipping image", "key", img.Key, "title", img.Title, "err", err)
			p.monitor.ItemFailed(img.Key, err)
			failed = append(failed, &ItemError{Key: img.Key, Err: err})
			if p.discard != nil {
				p.discard(ctx, img)
			}
			continue
		}

		enriched++
		p.monitor.ItemEnriched(record, time.Since(itemStart))
	}

	finish()
	if len(failed) > 0 {
		return &BatchError{Total: len(batch), Failed: failed}
	}
	return nil
}

// enrichOne acquires a classifier, decodes and labels one image.
func (p *Pipeline) enrichOne(ctx context.Context, img core.CapturedImage) (core.ImageRecord, error) {
	if err := core.ValidateCapturedImage(&img); err != nil {
		return core.ImageRecord{}, err
	}

	classifier, err := p.classifiers.Acquire(ctx)
	if err != nil {
		if !errors.Is(err, core.ErrClassifierLoad) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", core.ErrClassifierLoad, err)
		}
		return core.ImageRecord{}, err
	}

	pixels, format, err := decodeImage(ctx, p.pixels, img.URL)
	if err != nil {
		return core.ImageRecord{}, err
	}

	predictions, err := classifier.Classify(ctx, pixels)
	if err != nil {
		if ctx.Err() != nil {
			return core.ImageRecord{}, ctx.Err()
		}
		return core.ImageRecord{}, fmt.Errorf("%w: %w", core.ErrClassification, err)
	}

	record := core.NewImageRecord(img)
	for _, pred := range predictions {
		record.Classifications = append(record.Classifications, core.SplitLabels(pred.Label)...)
	}
	record.EnrichedAt = p.now()

	p.logger.Debug("image labeled",
		"key", img.Key,
		"format", format,
		"predictions", len(predictions),
		"labels", record.Classifications)
	return record, nil
}

// Submit runs Enrich for batch on the worker pool and returns immediately.
// Errors are logged and reported to the monitor. Use Wait to block until
// submitted batches are done.
func (p *Pipeline) Submit(ctx context.Context, batch []core.CapturedImage) error {
	if len(batch) == 0 {
		return nil
	}
	batch = append([]core.CapturedImage(nil), batch...)

	p.inflight.Add(1)
	err := p.pool.Submit(func() {
		defer p.inflight.Done()
		if err := p.Enrich(ctx, batch); err != nil {
			p.logger.Error("error enriching batch", "size", len(batch), "err", err)
		}
	})
	if err != nil {
		p.inflight.Done()
		return err
	}
	return nil
}

// Wait blocks until every submitted batch has finished.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

// Release releases resources including the worker pool.
// Submitted batches that already started run to completion.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool == nil {
		return
	}
	if err := p.pool.ReleaseTimeout(releaseTimeout); err != nil {
		p.logger.Warn("worker pool did not drain", "err", err)
	}
}
