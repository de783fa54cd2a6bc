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
	"fmt"
	"io"
	"time"

	"github.com/engramdb/engram/ai"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/search"
	"github.com/engramdb/engram/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of thoughts to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of thoughts)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer orchestrates re-embedding and re-indexing of all thoughts
// a user owns.
type Reindexer struct {
	thoughts  storage.ThoughtStore
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ThoughtIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(thoughts storage.ThoughtStore, engine *search.Engine, embedder ai.Embedder, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(thoughts, engine, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewThoughtIterator(thoughts, config.BatchSize)

	return &Reindexer{
		thoughts:  thoughts,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the reindexing operation for userID. Every thought the
// user owns is re-embedded with the configured embedder and re-upserted
// into the vector index. Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context, userID string) error {
	// Count first so the tracker can report percentages.
	startTime := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

	allThoughts, err := r.thoughts.GetThoughtsByDateRange(ctx, userID, startTime, endTime)
	if err != nil {
		return fmt.Errorf("failed to query thoughts: %w", err)
	}

	totalThoughts := len(allThoughts)
	if totalThoughts == 0 {
		fmt.Fprintf(r.progress, "No thoughts found for user %q (0 thoughts)\n", userID)
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindexing of %d thoughts (batch size: %d)\n",
		totalThoughts, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalThoughts, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, userID, func(thoughts []*core.Thought) error {
		if err := r.processor.Process(ctx, thoughts); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(thoughts)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindexing complete. Processed %d thoughts in %v (%.1f thoughts/sec)\n",
		totalThoughts, elapsed.Round(time.Second), float64(totalThoughts)/elapsed.Seconds())

	return nil
}
