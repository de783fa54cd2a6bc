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


// Package memory provides a map-backed vector index for tests and
// ephemeral runs.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/storage"
)

// VectorIndex is an in-memory storage.VectorIndex. Safe for concurrent
// use.
type VectorIndex struct {
	mu      sync.RWMutex
	records map[string]core.IndexedVector
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		records: make(map[string]core.IndexedVector),
	}
}

// Store upserts a vector record under the given id.
func (v *VectorIndex) Store(ctx context.Context, id string, vector []float32, meta core.VectorMetadata) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.records[id] = core.IndexedVector{
		VectorId: id,
		Vector:   slices.Clone(vector),
		Meta:     meta,
	}
	return nil
}

// Search scores all matching records by dot product and returns the
// topK ordered by score descending.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, topK int, userID, entityType string) ([]core.VectorMatch, error) {
	v.mu.RLock()
	var matches []core.VectorMatch
	for _, rec := range v.records {
		if len(rec.Vector) == 0 {
			continue
		}
		if userID != "" && rec.Meta.UserId != userID {
			continue
		}
		if entityType != "" && rec.Meta.EntityType != entityType {
			continue
		}
		matches = append(matches, core.VectorMatch{
			VectorId: rec.VectorId,
			Score:    dotProduct(vector, rec.Vector),
			Meta:     rec.Meta,
		})
	}
	v.mu.RUnlock()

	slices.SortStableFunc(matches, func(a, b core.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Delete removes the record. Missing ids are not an error.
func (v *VectorIndex) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.records, id)
	return nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}

// Len reports the number of stored vectors.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records)
}

func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
