package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/engramdb/engram/ai"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/search"
	"github.com/engramdb/engram/storage"
)

// BatchProcessor re-embeds batches of thoughts and writes the fresh
// vectors back to storage and the vector index.
type BatchProcessor struct {
	thoughts       storage.ThoughtStore
	engine         *search.Engine
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(thoughts storage.ThoughtStore, engine *search.Engine, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		thoughts:       thoughts,
		engine:         engine,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process re-embeds the entity entries of a batch of thoughts, persists
// the updated entries, and re-indexes each thought so the content and
// entity vectors both reflect the current embedding model. Entry
// vectors are normalized so dot-product scores stay comparable.
func (bp *BatchProcessor) Process(ctx context.Context, thoughts []*core.Thought) error {
	if len(thoughts) == 0 {
		return nil
	}

	// One embedding call covers every entry in the batch.
	var texts []string
	var entryRefs []*core.SemanticEntry
	for _, thought := range thoughts {
		for i := range thought.Entries {
			entry := &thought.Entries[i]
			texts = append(texts, entry.Tuple())
			entryRefs = append(entryRefs, entry)
		}
	}

	if len(texts) > 0 {
		var embeddings [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var err error
			embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
			return err
		}, bp.maxRetries, bp.retryBaseDelay)

		if err != nil {
			return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
		}

		if len(embeddings) != len(texts) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
		}

		for i, entry := range entryRefs {
			entry.Vector = NormalizeVector(embeddings[i])
		}

		if _, err := bp.thoughts.UpdateThoughts(ctx, thoughts...); err != nil {
			return fmt.Errorf("failed to update thoughts: %w", err)
		}
	}

	// Re-upsert content and entity vectors. IndexThought embeds the
	// content itself, so content vectors pick up the new model here.
	for _, thought := range thoughts {
		err := RetryWithBackoff(ctx, func() error {
			_, err := bp.engine.IndexThought(ctx, thought, thought.Entries)
			return err
		}, bp.maxRetries, bp.retryBaseDelay)
		if err != nil {
			return fmt.Errorf("failed to reindex thought %d after %d attempts: %w", thought.Id, bp.maxRetries, err)
		}
	}

	return nil
}
