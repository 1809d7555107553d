package ai

import (
	"context"
	"image"
)

// Classifier derives content labels from decoded pixel data.
// Implementations must be safe for concurrent use.
type Classifier interface {
	// Classify returns predictions ordered by descending confidence.
	// The number of predictions and any confidence cutoff are decided by
	// the implementation. A single Label may hold several synonyms joined
	// by ", " (for example "tabby, tabby cat"); callers split them.
	// Returns an error if the image cannot be classified.
	Classify(ctx context.Context, img image.Image) ([]Prediction, error)
}

// Prediction is one ranked classifier result.
type Prediction struct {
	// Label is the predicted class name, possibly several comma-separated synonyms.
	Label string

	// Confidence is the model's score for the label, usually in [0,1].
	Confidence float32
}

// Provider loads classifiers and owns their backing resources.
// Loading is expensive (model files, interpreter allocation, remote warm-up),
// so callers normally go through a Handle instead of calling LoadClassifier directly.
type Provider interface {
	// LoadClassifier prepares a ready-to-use classifier.
	// Repeated calls must yield classifiers with identical behavior.
	LoadClassifier(ctx context.Context) (Classifier, error)

	// Close releases resources held by the provider and its classifiers.
	// After Close is called, the provider and its classifiers should not be used.
	Close() error
}
