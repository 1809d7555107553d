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

// Package storage defines where the pixel bytes of uploaded images live.
//
// Captured images carry an opaque URL instead of their bytes. A
// BlobRepository mints those URLs on Put, resolves them on Open and forgets
// them on Revoke, much like object URLs in a browser. The enrichment
// pipeline only sees the Open half, through ingestion.PixelSource.
//
// Blobs are never persisted: the badger subpackage keeps them in an
// in-memory database that disappears on Close. BlobInfo metadata is
// encoded with the generated mus codec in serialization.go.
//
// Implementations must be safe for concurrent use.
package storage
