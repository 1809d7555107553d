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


package openai

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/gallerit/ai"
)

// Provider implements ai.Provider using an OpenAI-compatible vision service.
type Provider struct {
	config     *ai.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithHTTPClient overrides the HTTP client used to reach the service.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewProvider creates a provider for OpenAI-compatible vision classifiers.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...ProviderOption) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	p := &Provider{
		config:     config,
		httpClient: http.DefaultClient,
		logger:     slog.Default().With("component", "openai-provider"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// LoadClassifier creates the langchaingo client for the configured model.
// Remote models need no warm-up, so loading only builds the client.
func (p *Provider) LoadClassifier(ctx context.Context) (ai.Classifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := openai.New(
		openai.WithBaseURL(p.config.Host),
		openai.WithToken(p.config.APIKey),
		openai.WithModel(p.config.Model),
		openai.WithHTTPClient(p.httpClient),
	)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("vision client ready", "host", p.config.Host, "model", p.config.Model)
	return newClassifier(client, p.config, slog.Default().With("component", "openai-classifier")), nil
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
