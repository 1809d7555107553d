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


package mock

import (
	"context"
	"sync"
	"time"

	"github.com/poiesic/gallerit/ai"
)

// MockProvider is a test double for ai.Provider.
// It hands out a single shared mock classifier.
type MockProvider struct {
	// LoadFunc is called by LoadClassifier if set.
	// If nil, the shared mock classifier is returned.
	LoadFunc func(ctx context.Context) (ai.Classifier, error)

	// LoadDelay simulates an expensive model load.
	LoadDelay time.Duration

	classifier *MockClassifier

	mu         sync.Mutex
	loadCount  int
	closeCount int
}

// NewMockProvider creates a new mock provider with a default mock classifier.
// Note: Returns concrete type to allow test assertions via LoadCount().
func NewMockProvider() *MockProvider {
	return NewMockProviderWithClassifier(NewMockClassifier())
}

// NewMockProviderWithClassifier creates a mock provider around a custom mock classifier.
func NewMockProviderWithClassifier(classifier *MockClassifier) *MockProvider {
	return &MockProvider{classifier: classifier}
}

// LoadClassifier returns the shared mock classifier.
func (p *MockProvider) LoadClassifier(ctx context.Context) (ai.Classifier, error) {
	p.mu.Lock()
	p.loadCount++
	fn := p.LoadFunc
	delay := p.LoadDelay
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fn != nil {
		return fn(ctx)
	}
	return p.classifier, nil
}

// Close records the call.
func (p *MockProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCount++
	return nil
}

// LoadCount returns how many times LoadClassifier was called.
func (p *MockProvider) LoadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadCount
}

// CloseCount returns how many times Close was called.
func (p *MockProvider) CloseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCount
}

// GetMockClassifier returns the underlying mock classifier for test assertions.
func (p *MockProvider) GetMockClassifier() *MockClassifier {
	return p.classifier
}
