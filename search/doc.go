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


// Package search provides the hybrid search engine over thoughts.
//
// The Engine type combines four relevance signals into one ranking:
//   - Semantic similarity from vector search over embeddings
//   - Whole-word keyword overlap between the query and the content
//   - Recency of the thought's timestamp
//   - Confidence of the thought's extracted entities
//
// An Engine exposes four operations: IndexThought and RemoveFromIndex
// keep the vector index in step with the thought store, Search runs
// the query pipeline (embed, vector search, relational fetch, score,
// rank, paginate), and Suggest produces autocomplete strings from
// entity values and content tokens.
//
// Engines are stateless across calls and safe for concurrent use as
// long as the injected store, index and embedder are.
package search
