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


// Package storage provides the storage abstraction layer for engram.
//
// It defines the two interfaces the search engine depends on:
//
//   - ThoughtStore: durable thought records plus the filtered lookups
//     the search pipeline and the suggester need
//   - VectorIndex: vector upsert, metadata-filtered similarity search,
//     and idempotent deletion
//
// Public constructors of backend packages return these interfaces so
// consumers never couple to a particular backend:
//
//	store, err := badger.NewThoughtStore(path)  // returns storage.ThoughtStore
//
// The storage/badger package backs both interfaces with BadgerDB; the
// storage/memory package provides a map-based VectorIndex for tests and
// ephemeral runs.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use from multiple
// goroutines.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout
// support.
package storage
