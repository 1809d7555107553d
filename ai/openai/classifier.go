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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"slices"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"

	"github.com/poiesic/gallerit/ai"
)

const parseAttempts = 3

// ErrNoChoices is returned when the model answers without any completion.
var ErrNoChoices = errors.New("openai classifier: model returned no choices")

// Classifier implements ai.Classifier using an OpenAI-compatible vision chat model.
type Classifier struct {
	client        llms.Model
	topK          int
	minConfidence float32
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// prediction is an internal type used for JSON unmarshaling.
type prediction struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
}

// predictionSet is the wrapper structure for the model's JSON response.
type predictionSet struct {
	Predictions []prediction `json:"predictions"`
}

func newClassifier(client llms.Model, config *ai.Config, logger *slog.Logger) *Classifier {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return &Classifier{
		client:        client,
		topK:          config.TopK,
		minConfidence: config.MinConfidence,
		limiter:       limiter,
		logger:        logger,
	}
}

// Classify sends the image to the vision model and parses its ranked labels.
func (c *Classifier) Classify(ctx context.Context, img image.Image) ([]ai.Prediction, error) {
	if img == nil {
		return nil, errors.New("openai classifier: nil image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("openai classifier: encode image: %w", err)
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(c.topK))},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart("image/png", buf.Bytes()),
				llms.TextPart("Classify this image."),
			},
		},
	}

	// Try up to parseAttempts times in case of malformed JSON
	var result predictionSet
	var lastErr error
	for attempt := 1; attempt <= parseAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt, "err", err)
			return nil, err
		}
		if len(response.Choices) < 1 {
			c.logger.Error("no choices returned from model", "attempt", attempt)
			return nil, ErrNoChoices
		}

		text := repairJSON(stripCodeFences(response.Choices[0].Content))
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response", "attempt", attempt, "response", text, "err", err)
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("openai classifier: unparseable response after %d attempts: %w", parseAttempts, lastErr)
	}

	return c.rank(result.Predictions), nil
}

// rank drops blank or low-confidence labels, orders by confidence and keeps the top K.
func (c *Classifier) rank(raw []prediction) []ai.Prediction {
	out := make([]ai.Prediction, 0, len(raw))
	for _, p := range raw {
		label := strings.TrimSpace(p.Label)
		if label == "" || p.Confidence < c.minConfidence {
			continue
		}
		out = append(out, ai.Prediction{Label: label, Confidence: p.Confidence})
	}
	slices.SortStableFunc(out, func(a, b ai.Prediction) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})
	if len(out) > c.topK {
		out = out[:c.topK]
	}
	c.logger.Debug("classified image", "total", len(raw), "kept", len(out))
	return out
}
