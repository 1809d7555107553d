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


// Package search provides fuzzy search over gallery records.
//
// Queries are matched against record titles and classification labels,
// whichever the caller's core.FieldConfig enables. Matching runs in three
// bands, best first:
//   - exact equality after normalization
//   - substring containment, earlier occurrences ranking higher
//   - approximate matching by optimal string alignment distance
//
// Normalization folds case and strips diacritics. Each query builds a fresh
// Index whose postings are roaring bitmaps keyed by distinct field values,
// so repeated labels are scored once and a record is returned at most once.
//
// Display is the entry point for rendering: an empty query lists the
// records unchanged, anything else returns the ranked matches.
package search
