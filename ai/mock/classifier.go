package mock

import (
	"context"
	"hash/fnv"
	"image"
	"sync"

	"github.com/poiesic/gallerit/ai"
)

// Vocabulary is the label set the default mock classifier draws from.
var Vocabulary = []string{
	"tabby, tabby cat",
	"golden retriever",
	"seashore, coast, seacoast, sea-coast",
	"mountain bike, all-terrain bike",
	"espresso",
	"lakeside, lakeshore",
	"daisy",
	"sports car, sport car",
}

// MockClassifier is a test double for ai.Classifier.
// It allows custom behavior injection via function fields.
type MockClassifier struct {
	// ClassifyFunc is called by Classify if set.
	// If nil, uses default deterministic behavior.
	ClassifyFunc func(ctx context.Context, img image.Image) ([]ai.Prediction, error)

	// TopK bounds the default predictions. Zero means 2.
	TopK int

	mu        sync.Mutex
	callCount int
}

// NewMockClassifier creates a mock classifier with default deterministic behavior.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Classify returns predictions chosen deterministically from the image pixels.
func (m *MockClassifier) Classify(ctx context.Context, img image.Image) ([]ai.Prediction, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.ClassifyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, img)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := m.TopK
	if k <= 0 {
		k = 2
	}
	seed := pixelHash(img)
	preds := make([]ai.Prediction, 0, k)
	for i := 0; i < k && i < len(Vocabulary); i++ {
		preds = append(preds, ai.Prediction{
			Label:      Vocabulary[(int(seed)+i)%len(Vocabulary)],
			Confidence: 1 / float32(i+2),
		})
	}
	return preds, nil
}

// CallCount returns the number of times Classify was called.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockClassifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ClassifyFunc = nil
}

// pixelHash hashes the image so the same pixels always yield the same labels.
func pixelHash(img image.Image) uint32 {
	h := fnv.New32a()
	if img == nil {
		return h.Sum32()
	}
	b := img.Bounds()
	buf := make([]byte, 0, 4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			buf = append(buf[:0], byte(r>>8), byte(g>>8), byte(bl>>8))
			h.Write(buf)
		}
	}
	return h.Sum32()
}
