// Copyright 2025 The Engram Authors
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


package search

import "errors"

var (
	// ErrIndexing indicates that embedding generation or a vector
	// store write failed during IndexThought or RemoveFromIndex.
	// The cause is attached with %w.
	ErrIndexing = errors.New("indexing failed")

	// ErrSearch indicates that embedding generation, vector search or
	// the relational fetch failed during Search or Suggest.
	// The cause is attached with %w.
	ErrSearch = errors.New("search failed")

	// ErrThoughtStoreRequired is returned when a thought store is not provided.
	ErrThoughtStoreRequired = errors.New("thought store required")

	// ErrVectorIndexRequired is returned when a vector index is not provided.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
