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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidImageRecord indicates an ImageRecord failed validation.
	ErrInvalidImageRecord = errors.New("invalid image record")

	// ErrEmptyKey indicates the Key field is empty.
	ErrEmptyKey = errors.New("key cannot be empty")

	// ErrEmptyURL indicates the URL field is empty.
	ErrEmptyURL = errors.New("url cannot be empty")
)

// Enrichment and gallery errors
var (
	// ErrClassifierLoad indicates the labeling capability could not be acquired.
	ErrClassifierLoad = errors.New("classifier load failed")

	// ErrDecode indicates pixel data could not be decoded.
	ErrDecode = errors.New("image decode failed")

	// ErrClassification indicates the classifier rejected the image.
	ErrClassification = errors.New("classification failed")

	// ErrDuplicateKey indicates an append with a key already present in the gallery.
	// This is an invariant violation, not a user-recoverable condition.
	ErrDuplicateKey = errors.New("duplicate image key")
)
