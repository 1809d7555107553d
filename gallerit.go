// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package gallerit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/poiesic/gallerit/ai"
	"github.com/poiesic/gallerit/ai/openai"
	"github.com/poiesic/gallerit/ai/tflite"
	"github.com/poiesic/gallerit/config"
	"github.com/poiesic/gallerit/core"
	"github.com/poiesic/gallerit/gallery"
	"github.com/poiesic/gallerit/ingestion"
	"github.com/poiesic/gallerit/search"
	"github.com/poiesic/gallerit/storage"
	"github.com/poiesic/gallerit/storage/badger"
)

const (
	defaultResultTTL = time.Minute
	// maxCachedResults triggers a sweep of expired results.
	maxCachedResults = 256
)

// ErrEmptyUpload is returned when an uploaded file has no content.
var ErrEmptyUpload = errors.New("uploaded file is empty")

// File is one uploaded image file.
type File struct {
	Name     string // File name; its base name becomes the record title
	MIMEType string // Sniffed from Data when empty
	Data     []byte
}

// Gallery ties together blob storage, the gallery store, the classifier
// and the enrichment pipeline.
type Gallery struct {
	blobs    storage.BlobRepository
	store    *gallery.Store
	handle   *ai.Handle
	pipeline *ingestion.Pipeline
	searcher *search.Searcher
	results  *cache.Cache // nil when result caching is disabled
	fields   core.FieldConfig
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Gallery.
type Option func(*options)

type options struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	blobs        storage.BlobRepository
	fields       core.FieldConfig
	resultTTL    time.Duration
	pipelineOpts []ingestion.Option
	searchOpts   []search.Option
	logger       *slog.Logger
}

// WithAIConfig selects and configures the classifier backend.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = cfg
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The gallery takes ownership and closes it.
func WithProvider(provider ai.Provider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithBlobRepository stores pixel bytes in repo instead of a private
// in-memory repository. The gallery takes ownership and closes it.
func WithBlobRepository(repo storage.BlobRepository) Option {
	return func(o *options) {
		o.blobs = repo
	}
}

// WithFieldConfig sets the default search fields used by Search.
func WithFieldConfig(cfg core.FieldConfig) Option {
	return func(o *options) {
		o.fields = cfg
	}
}

// WithResultCache keeps search results for ttl. Results are cached per
// gallery version, so any change to the gallery makes earlier entries
// unreachable. A ttl of 0 disables caching. Default is one minute.
func WithResultCache(ttl time.Duration) Option {
	return func(o *options) {
		o.resultTTL = ttl
	}
}

// WithPipelineOptions passes options through to the enrichment pipeline.
func WithPipelineOptions(opts ...ingestion.Option) Option {
	return func(o *options) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithSearchOptions passes options through to the searcher.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *options) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithSettings applies loaded configuration.
func WithSettings(s *config.Settings) Option {
	return func(o *options) {
		o.aiConfig = s.AIConfig()
		o.fields = s.FieldConfig()
		if s.Pipeline.PoolSize > 0 {
			o.pipelineOpts = append(o.pipelineOpts, ingestion.WithPoolSize(s.Pipeline.PoolSize))
		}
		o.searchOpts = append(o.searchOpts,
			search.WithThreshold(s.Search.Threshold),
			search.WithLimit(s.Search.Limit),
		)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates an empty gallery. The classifier is not loaded until the
// first image is enriched.
func New(opts ...Option) (*Gallery, error) {
	o := &options{
		aiConfig:  ai.DefaultConfig(),
		fields:    core.DefaultFieldConfig(),
		resultTTL: defaultResultTTL,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.aiConfig == nil {
		o.aiConfig = ai.DefaultConfig()
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	provider := o.provider
	if provider == nil {
		var err error
		if provider, err = NewProvider(o.aiConfig); err != nil {
			return nil, err
		}
	}

	handle, err := ai.NewHandle(provider,
		ai.WithHandleLogger(logger.With("component", "classifier-handle")),
		ai.WithRetry(max(o.aiConfig.LoadAttempts, 1), o.aiConfig.LoadRetryDelay),
	)
	if err != nil {
		provider.Close()
		return nil, err
	}

	blobs := o.blobs
	if blobs == nil {
		if blobs, err = badger.NewMemoryBlobRepository(); err != nil {
			handle.Close()
			return nil, err
		}
	}

	searcher, err := search.NewSearcher(append([]search.Option{
		search.WithLogger(logger.With("component", "search")),
	}, o.searchOpts...)...)
	if err != nil {
		blobs.Close()
		handle.Close()
		return nil, err
	}

	store := gallery.NewStore(gallery.WithLogger(logger.With("component", "gallery")))

	pipeline, err := ingestion.NewPipeline(store, handle, blobs, append([]ingestion.Option{
		ingestion.WithLogger(logger.With("component", "ingestion")),
		ingestion.WithDiscard(releasePixels(blobs, logger)),
	}, o.pipelineOpts...)...)
	if err != nil {
		blobs.Close()
		handle.Close()
		return nil, err
	}

	g := &Gallery{
		blobs:    blobs,
		store:    store,
		handle:   handle,
		pipeline: pipeline,
		searcher: searcher,
		fields:   o.fields,
		logger:   logger.With("component", "gallerit"),
	}
	if o.resultTTL > 0 {
		// no janitor goroutine; expired entries are swept in Display
		g.results = cache.New(o.resultTTL, 0)
	}
	return g, nil
}

// NewProvider builds the classifier provider selected by cfg.Backend.
func NewProvider(cfg *ai.Config) (ai.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case ai.BackendOpenAI:
		return openai.NewProvider(cfg)
	case ai.BackendTFLite:
		return tflite.NewProvider(cfg)
	}
	return nil, fmt.Errorf("unsupported classifier backend %q", cfg.Backend)
}

// Upload stores the bytes of files and returns one captured image per
// file, in order, each with a fresh key. Nothing is labeled yet. If any
// file cannot be stored, the files stored so far are revoked.
func (g *Gallery) Upload(ctx context.Context, files []File) ([]core.CapturedImage, error) {
	captured := make([]core.CapturedImage, 0, len(files))
	for _, f := range files {
		url, err := g.put(ctx, f)
		if err != nil {
			for _, c := range captured {
				if revokeErr := g.blobs.Revoke(ctx, c.URL); revokeErr != nil {
					g.logger.Warn("error revoking upload", "url", c.URL, "err", revokeErr)
				}
			}
			return nil, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		captured = append(captured, core.CapturedImage{
			URL:   url,
			Title: filepath.Base(f.Name),
			Key:   core.NewKey(),
		})
	}
	g.logger.Debug("uploaded files", "count", len(captured))
	return captured, nil
}

func (g *Gallery) put(ctx context.Context, f File) (string, error) {
	if len(f.Data) == 0 {
		return "", ErrEmptyUpload
	}
	mime := f.MIMEType
	if mime == "" {
		mime = http.DetectContentType(f.Data)
	}
	return g.blobs.Put(ctx, mime, f.Data)
}

// releasePixels revokes the blob of an image the pipeline gave up on.
func releasePixels(blobs storage.BlobRepository, logger *slog.Logger) func(context.Context, core.CapturedImage) {
	return func(ctx context.Context, img core.CapturedImage) {
		if err := blobs.Revoke(context.WithoutCancel(ctx), img.URL); err != nil {
			logger.Warn("failed to release pixels", "key", img.Key, "err", err)
		}
	}
}

// Enrich labels batch and adds each image to the gallery as soon as it is
// labeled. See ingestion.Pipeline.Enrich for the failure semantics. Images
// that are skipped are not retried and their pixels are released, so their
// URLs stop resolving.
func (g *Gallery) Enrich(ctx context.Context, batch []core.CapturedImage) error {
	return g.pipeline.Enrich(ctx, batch)
}

// Submit enriches batch in the background. Use Wait to block until every
// submitted batch is finished. Skipped images are released as in Enrich.
func (g *Gallery) Submit(ctx context.Context, batch []core.CapturedImage) error {
	return g.pipeline.Submit(ctx, batch)
}

// Add uploads files and enriches them in one step.
func (g *Gallery) Add(ctx context.Context, files []File) ([]core.CapturedImage, error) {
	captured, err := g.Upload(ctx, files)
	if err != nil {
		return nil, err
	}
	return captured, g.Enrich(ctx, captured)
}

// Wait blocks until every submitted batch is finished.
func (g *Gallery) Wait() {
	g.pipeline.Wait()
}

// Delete removes the image with key and releases its pixel bytes.
// Deleting an unknown key is a no-op.
func (g *Gallery) Delete(ctx context.Context, key string) error {
	record, ok := g.store.Get(key)
	if !ok || !g.store.Remove(key) {
		return nil
	}
	if err := g.blobs.Revoke(ctx, record.URL); err != nil {
		return fmt.Errorf("release pixels of %s: %w", key, err)
	}
	return nil
}

// Retitle changes the title of the image with key.
func (g *Gallery) Retitle(key, title string) error {
	return g.store.Retitle(key, title)
}

// Images returns every image in gallery order.
func (g *Gallery) Images() []core.ImageRecord {
	return g.store.List()
}

// Len returns the number of images in the gallery.
func (g *Gallery) Len() int {
	return g.store.Len()
}

// Pixels opens the stored bytes of url.
func (g *Gallery) Pixels(ctx context.Context, url string) (io.ReadCloser, error) {
	return g.blobs.Open(ctx, url)
}

// Stat returns the stored MIME type, size and digest of the pixels behind url.
func (g *Gallery) Stat(ctx context.Context, url string) (*core.BlobInfo, error) {
	return g.blobs.Stat(ctx, url)
}

// Display returns the images to show for query using cfg to pick the
// searched fields. An empty query lists the gallery unchanged.
func (g *Gallery) Display(query string, cfg core.FieldConfig) []core.ImageRecord {
	snap := g.store.Snapshot()
	if query == "" || g.results == nil {
		return cloneRecords(g.searcher.Display(snap.Records, cfg, query))
	}

	key := fmt.Sprintf("%d|%t|%t|%s", snap.Version, cfg.Title, cfg.Classifications, query)
	if cached, ok := g.results.Get(key); ok {
		return cloneRecords(cached.([]core.ImageRecord))
	}

	if g.results.ItemCount() >= maxCachedResults {
		g.results.DeleteExpired()
	}
	found := g.searcher.Display(snap.Records, cfg, query)
	g.results.SetDefault(key, found)
	return cloneRecords(found)
}

func cloneRecords(records []core.ImageRecord) []core.ImageRecord {
	out := make([]core.ImageRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Search is Display with the gallery's default field configuration.
func (g *Gallery) Search(query string) []core.ImageRecord {
	return g.Display(query, g.fields)
}

// Close waits for submitted batches and releases the pipeline, classifier
// and blob storage. It is safe to call more than once.
func (g *Gallery) Close() error {
	g.closeOnce.Do(func() {
		g.pipeline.Wait()
		g.pipeline.Release()

		var errs []error
		if err := g.handle.Close(); err != nil {
			g.logger.Error("error closing classifier", "err", err)
			errs = append(errs, err)
		}
		if err := g.blobs.Close(); err != nil {
			g.logger.Error("error closing blob storage", "err", err)
			errs = append(errs, err)
		}
		if g.results != nil {
			g.results.Flush()
		}
		g.closeErr = errors.Join(errs...)
	})
	return g.closeErr
}
