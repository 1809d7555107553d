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


// Package openai labels images by asking a vision-capable chat model served
// behind an OpenAI-compatible API (OpenAI itself, Ollama, LocalAI, vLLM).
//
// The image is sent as an inline PNG part together with a system prompt
// that requests a JSON object of ranked predictions. Replies are cleaned of
// code fences and common JSON mistakes before decoding, and a reply that
// still cannot be parsed is retried a few times. Calls can be throttled
// with ai.WithRequestsPerSecond.
//
//	cfg := ai.NewConfig(
//	    ai.WithBackend(ai.BackendOpenAI),
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithModel("llava:7b"),
//	)
//	provider, err := openai.NewProvider(cfg)
package openai
