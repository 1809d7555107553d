package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/gallerit/core"
)

const loadKey = "classifier"

// Handle lazily loads a classifier once and shares it between callers.
//
// Concurrent Acquire calls made while a load is running wait on that same
// load. A successful load is cached for the lifetime of the Handle. A failed
// load is not cached, so the next Acquire starts a fresh attempt.
type Handle struct {
	provider   Provider
	attempts   int
	retryDelay time.Duration
	logger     *slog.Logger

	group singleflight.Group

	mu         sync.RWMutex
	classifier Classifier
	closed     bool
}

// HandleOption configures a Handle.
type HandleOption func(*Handle) error

// WithHandleLogger sets the logger used by the handle.
func WithHandleLogger(logger *slog.Logger) HandleOption {
	return func(h *Handle) error {
		if logger != nil {
			h.logger = logger
		}
		return nil
	}
}

// WithRetry sets the bounded retry policy applied to each load.
func WithRetry(attempts int, baseDelay time.Duration) HandleOption {
	return func(h *Handle) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		h.attempts = attempts
		h.retryDelay = baseDelay
		return nil
	}
}

// NewHandle creates a Handle around the given provider. Nothing is loaded until
// the first Acquire.
func NewHandle(provider Provider, opts ...HandleOption) (*Handle, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	h := &Handle{
		provider: provider,
		attempts: 1,
		logger:   slog.Default().With("component", "classifier-handle"),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Acquire returns the shared classifier, loading it first if needed.
// Cancelling ctx abandons the wait but does not abort a load other callers
// may still be waiting on.
func (h *Handle) Acquire(ctx context.Context) (Classifier, error) {
	h.mu.RLock()
	closed, classifier := h.closed, h.classifier
	h.mu.RUnlock()
	if closed {
		return nil, ErrHandleClosed
	}
	if classifier != nil {
		return classifier, nil
	}

	ch := h.group.DoChan(loadKey, func() (any, error) {
		return h.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Classifier), nil
	}
}

func (h *Handle) load(ctx context.Context) (Classifier, error) {
	h.mu.RLock()
	if h.classifier != nil {
		c := h.classifier
		h.mu.RUnlock()
		return c, nil
	}
	h.mu.RUnlock()

	start := time.Now()
	var loaded Classifier
	err := RetryWithBackoff(ctx, func() error {
		c, err := h.provider.LoadClassifier(ctx)
		if err != nil {
			return err
		}
		loaded = c
		return nil
	}, h.attempts, h.retryDelay)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.logger.Error("classifier load failed", "attempts", h.attempts, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrClassifierLoad, err)
	}
	if h.closed {
		return nil, ErrHandleClosed
	}
	h.classifier = loaded
	h.logger.Info("classifier loaded", "duration", time.Since(start))
	return loaded, nil
}

// Close drops the cached classifier and closes the provider.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.classifier = nil
	h.mu.Unlock()
	return h.provider.Close()
}
