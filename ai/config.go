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


package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Backend names a classifier implementation.
type Backend string

const (
	// BackendTFLite runs a TensorFlow Lite image classifier in process.
	BackendTFLite Backend = "tflite"
	// BackendOpenAI asks an OpenAI-compatible vision model for labels.
	BackendOpenAI Backend = "openai"
)

// Config holds configuration for classifier providers.
type Config struct {
	// Backend selects the classifier implementation.
	// Default: "tflite"
	Backend Backend

	// ModelPath is the TFLite model file used by the tflite backend.
	// Example: "mobilenet_v2_0.5_224.tflite"
	ModelPath string

	// LabelsPath is the label file used by the tflite backend, one label per line.
	// Lines may contain synonyms, e.g. "tabby, tabby cat".
	LabelsPath string

	// Threads is the interpreter thread count for the tflite backend. 0 means automatic.
	Threads int

	// Host is the base URL for the OpenAI-compatible vision service.
	// Example: "http://localhost:11434/v1" for a local server
	Host string

	// Model is the vision model identifier for the openai backend.
	// Example: "llava:7b", "gpt-4o-mini"
	Model string

	// APIKey is the bearer token for the openai backend.
	// Local OpenAI-compatible servers accept "none".
	APIKey string

	// TopK is the maximum number of predictions returned per image.
	// Default: 3
	TopK int

	// MinConfidence drops predictions scoring below this value.
	// Default: 0 (keep everything in the top K)
	MinConfidence float32

	// RequestsPerSecond limits calls to a remote classifier. 0 disables limiting.
	RequestsPerSecond float64

	// LoadAttempts bounds how often a failing classifier load is retried.
	// Default: 3
	LoadAttempts int

	// LoadRetryDelay is the base delay for exponential backoff between load attempts.
	// Default: 500ms
	LoadRetryDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the classifier backend.
func WithBackend(backend Backend) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithModelPath sets the TFLite model file.
func WithModelPath(path string) ConfigOption {
	return func(c *Config) {
		c.ModelPath = path
	}
}

// WithLabelsPath sets the TFLite label file.
func WithLabelsPath(path string) ConfigOption {
	return func(c *Config) {
		c.LabelsPath = path
	}
}

// WithThreads sets the TFLite interpreter thread count.
func WithThreads(threads int) ConfigOption {
	return func(c *Config) {
		c.Threads = threads
	}
}

// WithHost sets the vision service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the vision model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the vision service token.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTopK sets the maximum number of predictions per image.
func WithTopK(k int) ConfigOption {
	return func(c *Config) {
		c.TopK = k
	}
}

// WithMinConfidence sets the minimum prediction confidence.
func WithMinConfidence(min float32) ConfigOption {
	return func(c *Config) {
		c.MinConfidence = min
	}
}

// WithRequestsPerSecond limits the rate of remote classification calls.
func WithRequestsPerSecond(rps float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

// WithLoadRetry sets the bounded retry policy for classifier loading.
func WithLoadRetry(attempts int, baseDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.LoadAttempts = attempts
		c.LoadRetryDelay = baseDelay
	}
}

// DefaultConfig returns a Config with sensible defaults.
// The in-process TFLite backend is the default, matching a browser-side MobileNet.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendTFLite,
		ModelPath:      "mobilenet_v2_0.5_224.tflite",
		LabelsPath:     "imagenet_labels.txt",
		Host:           "http://localhost:11434/v1",
		Model:          "llava:7b",
		APIKey:         "none",
		TopK:           3,
		LoadAttempts:   3,
		LoadRetryDelay: 500 * time.Millisecond,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithBackend(BackendOpenAI),
//       WithHost("http://localhost:11434"),
//       WithModel("llava:7b"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It lowercases the backend name and adds the /v1 suffix to the host if missing,
// which is required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Backend = Backend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendTFLite:
		if c.ModelPath == "" {
			return errors.New("ai config: ModelPath is required for the tflite backend")
		}
		if c.LabelsPath == "" {
			return errors.New("ai config: LabelsPath is required for the tflite backend")
		}
		if c.Threads < 0 {
			return errors.New("ai config: Threads cannot be negative")
		}
	case BackendOpenAI:
		if c.Host == "" {
			return errors.New("ai config: Host is required for the openai backend")
		}
		if c.Model == "" {
			return errors.New("ai config: Model is required for the openai backend")
		}
	default:
		return fmt.Errorf("ai config: unknown backend %q", c.Backend)
	}

	if c.TopK < 1 {
		return errors.New("ai config: TopK must be at least 1")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.New("ai config: MinConfidence must be between 0 and 1")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("ai config: RequestsPerSecond cannot be negative")
	}
	if c.LoadAttempts < 1 {
		return errors.New("ai config: LoadAttempts must be at least 1")
	}
	return nil
}
