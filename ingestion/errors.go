package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreRequired is returned when a gallery store is not provided.
	ErrStoreRequired = errors.New("gallery store required")

	// ErrClassifierSourceRequired is returned when a classifier source is not provided.
	ErrClassifierSourceRequired = errors.New("classifier source required")

	// ErrPixelSourceRequired is returned when a pixel source is not provided.
	ErrPixelSourceRequired = errors.New("pixel source required")
)

// ItemError records why one image of a batch was not enriched.
type ItemError struct {
	Key string
	Err error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// BatchError reports the images of a batch that were skipped. Every other
// image of the batch was enriched and published.
type BatchError struct {
	Total  int
	Failed []*ItemError
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("enrichment failed for %d of %d images: %s",
		len(e.Failed), e.Total, strings.Join(parts, "; "))
}

// Unwrap exposes the per-item causes to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}

// Keys returns the keys of the failed images in batch order.
func (e *BatchError) Keys() []string {
	keys := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		keys[i] = f.Key
	}
	return keys
}
