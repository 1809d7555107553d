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


// Package ai provides abstractions for the image classifiers used in Gallerit.
//
// The enrichment pipeline depends only on the interfaces declared here, so a
// local TensorFlow Lite model and a remote vision model are interchangeable.
//
// # Interfaces
//
//   - Classifier: Produces ranked label predictions for a decoded image
//   - Provider: Loads a Classifier and owns its resources
//
// # Shared Loading
//
// Loading a model is expensive. Handle wraps a Provider so that the first
// caller triggers a load, concurrent callers wait on that same load, and later
// callers reuse the result. Failed loads are retried with RetryWithBackoff and
// are never cached, so a later Acquire can recover.
//
//	handle, err := ai.NewHandle(provider, ai.WithRetry(3, 500*time.Millisecond))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer handle.Close()
//
//	classifier, err := handle.Acquire(ctx)
//	predictions, err := classifier.Classify(ctx, img)
//
// # Implementation Packages
//
//   - ai/tflite: In-process MobileNet-style classifier using TensorFlow Lite
//   - ai/openai: Vision classifier using OpenAI-compatible chat APIs
//   - ai/mock: Test doubles for unit testing without model files
package ai
