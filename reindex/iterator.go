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


package reindex

import (
	"context"
	"time"

	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/storage"
)

const (
	// DefaultBatchSize is the default number of thoughts to fetch in each batch
	DefaultBatchSize = 100
)

// ThoughtIterator iterates over all of a user's thoughts in batches.
type ThoughtIterator struct {
	thoughts  storage.ThoughtStore
	batchSize int
}

// NewThoughtIterator creates a new thought iterator.
// batchSize: number of thoughts to process in each batch (must be > 0)
func NewThoughtIterator(thoughts storage.ThoughtStore, batchSize int) *ThoughtIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ThoughtIterator{
		thoughts:  thoughts,
		batchSize: batchSize,
	}
}

// ForEach iterates over all thoughts owned by userID, calling fn for
// each batch. Iteration stops on first error from fn or when all
// thoughts are processed. Context cancellation is checked between
// batches.
func (it *ThoughtIterator) ForEach(ctx context.Context, userID string, fn func([]*core.Thought) error) error {
	// Wide date range to cover every stored thought
	startTime := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	thoughts, err := it.thoughts.GetThoughtsByDateRange(ctx, userID, startTime, endTime)
	if err != nil {
		return err
	}

	if len(thoughts) == 0 {
		return nil
	}

	for i := 0; i < len(thoughts); i += it.batchSize {
		end := i + it.batchSize
		if end > len(thoughts) {
			end = len(thoughts)
		}

		if err := fn(thoughts[i:end]); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
