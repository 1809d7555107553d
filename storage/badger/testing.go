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


package badger

import "github.com/poiesic/gallerit/storage"

// NewMemoryBlobRepository creates a blob repository on its own in-memory
// backend. Closing the repository closes the backend.
func NewMemoryBlobRepository() (storage.BlobRepository, error) {
	backend, err := OpenMemoryBackend()
	if err != nil {
		return nil, err
	}

	repo, err := NewBlobRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.owned = true
	return repo, nil
}
