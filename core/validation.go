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

import (
	"fmt"
)

// ValidateImageRecord validates an ImageRecord according to domain rules.
//
// Validation rules:
//   - Key must not be empty
//   - URL must not be empty
//
// NOT validated:
//   - Title (may be empty, the user can edit it at any time)
//   - Classifications (empty until the pipeline enriches the record)
func ValidateImageRecord(record *ImageRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidImageRecord)
	}

	if record.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidImageRecord, ErrEmptyKey)
	}

	if record.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidImageRecord, ErrEmptyURL)
	}

	return nil
}

// ValidateCapturedImage validates a CapturedImage before it enters the pipeline.
func ValidateCapturedImage(img *CapturedImage) error {
	if img == nil {
		return fmt.Errorf("%w: captured image is nil", ErrInvalidImageRecord)
	}
	record := NewImageRecord(*img)
	return ValidateImageRecord(&record)
}
