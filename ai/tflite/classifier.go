package tflite

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/tphakala/go-tflite"

	"github.com/poiesic/gallerit/ai"
)

// Classifier implements ai.Classifier on a TensorFlow Lite interpreter.
// The interpreter is not safe for concurrent use, so Classify serializes
// access to it.
type Classifier struct {
	mu          sync.Mutex
	interpreter *tflite.Interpreter
	inputType   tflite.TensorType
	width       int
	height      int
	labels      []string
	topK        int
	min         float32
	logger      *slog.Logger
}

// Classify resizes img to the model input, runs inference and returns the
// top predictions.
func (c *Classifier) Classify(ctx context.Context, img image.Image) ([]ai.Prediction, error) {
	if img == nil {
		return nil, errors.New("tflite classifier: nil image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pixels := resizeRGB(img, c.width, c.height)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interpreter == nil {
		return nil, errors.New("tflite classifier: interpreter released")
	}

	input := c.interpreter.GetInputTensor(0)
	if input == nil {
		return nil, errors.New("tflite classifier: cannot get input tensor")
	}
	switch c.inputType {
	case tflite.Float32:
		normalizeFloat(input.Float32s(), pixels)
	case tflite.UInt8:
		copy(input.UInt8s(), pixels)
	default:
		return nil, fmt.Errorf("tflite classifier: unsupported input type %v", c.inputType)
	}

	if status := c.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("tflite classifier: invoke failed with status %v", status)
	}

	output := c.interpreter.GetOutputTensor(0)
	if output == nil {
		return nil, errors.New("tflite classifier: cannot get output tensor")
	}
	var scores []float32
	switch output.Type() {
	case tflite.Float32:
		scores = append([]float32(nil), output.Float32s()...)
	case tflite.UInt8:
		scores = dequantize(output.UInt8s())
	default:
		return nil, fmt.Errorf("tflite classifier: unsupported output type %v", output.Type())
	}

	preds := topPredictions(scores, c.labels, c.topK, c.min)
	c.logger.Debug("classified image", "outputs", len(scores), "kept", len(preds))
	return preds, nil
}

func (c *Classifier) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interpreter != nil {
		c.interpreter.Delete()
		c.interpreter = nil
	}
}
