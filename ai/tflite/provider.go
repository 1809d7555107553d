package tflite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/tphakala/go-tflite"

	"github.com/poiesic/gallerit/ai"
)

// Provider implements ai.Provider for MobileNet-style TFLite image classifiers.
type Provider struct {
	config *ai.Config
	logger *slog.Logger

	mu          sync.Mutex
	models      []*tflite.Model
	classifiers []*Classifier
	closed      bool
}

// NewProvider creates a TFLite provider. The model and label files are read
// when a classifier is loaded, not here.
//
// Returns ai.Provider interface to enforce abstraction.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Provider{
		config: config,
		logger: slog.Default().With("component", "tflite-provider"),
	}, nil
}

// LoadClassifier reads the model and labels, builds an interpreter and
// allocates its tensors.
func (p *Provider) LoadClassifier(ctx context.Context) (ai.Classifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	labels, err := loadLabelsFile(p.config.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels %s: %w", p.config.LabelsPath, err)
	}

	modelData, err := os.ReadFile(p.config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", p.config.ModelPath, err)
	}
	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, fmt.Errorf("cannot load TensorFlow Lite model %s", p.config.ModelPath)
	}

	threads := p.config.Threads
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	options := tflite.NewInterpreterOptions()
	defer options.Delete()
	options.SetNumThread(threads)
	options.SetErrorReporter(func(msg string, _ any) {
		p.logger.Error("TFLite error", "message", msg)
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		model.Delete()
		return nil, errors.New("cannot create interpreter")
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		model.Delete()
		return nil, errors.New("tensor allocation failed")
	}

	input := interpreter.GetInputTensor(0)
	if input == nil || input.NumDims() != 4 || input.Dim(3) != 3 {
		interpreter.Delete()
		model.Delete()
		return nil, errors.New("model input must be a [1,height,width,3] image tensor")
	}
	output := interpreter.GetOutputTensor(0)
	if output == nil {
		interpreter.Delete()
		model.Delete()
		return nil, errors.New("cannot get output tensor")
	}

	labels, err = alignLabels(labels, output.Dim(output.NumDims()-1))
	if err != nil {
		interpreter.Delete()
		model.Delete()
		return nil, err
	}

	c := &Classifier{
		interpreter: interpreter,
		inputType:   input.Type(),
		height:      input.Dim(1),
		width:       input.Dim(2),
		labels:      labels,
		topK:        p.config.TopK,
		min:         p.config.MinConfidence,
		logger:      slog.Default().With("component", "tflite-classifier"),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		c.release()
		model.Delete()
		return nil, errors.New("tflite provider closed")
	}
	p.models = append(p.models, model)
	p.classifiers = append(p.classifiers, c)

	p.logger.Info("model loaded",
		"model", p.config.ModelPath,
		"labels", len(labels),
		"input", fmt.Sprintf("%dx%d", c.width, c.height),
		"threads", threads,
		"duration", time.Since(start))
	return c, nil
}

// Close deletes every interpreter and model created by this provider.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for _, c := range p.classifiers {
		c.release()
	}
	for _, m := range p.models {
		m.Delete()
	}
	p.classifiers = nil
	p.models = nil
	return nil
}
