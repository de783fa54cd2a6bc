package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/engramdb/engram/ai"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/storage"
)

// enrichProcessor extracts entities from thoughts, embeds their
// tuples, and writes the resulting semantic entries back to the store.
type enrichProcessor struct {
	thoughts  storage.ThoughtStore
	embedder  ai.Embedder
	extractor ai.EntityExtractor
	logger    *slog.Logger
}

var _ processor = (*enrichProcessor)(nil)

// newEnrichProcessor creates an enrichment processor.
func newEnrichProcessor(
	thoughts storage.ThoughtStore,
	embedder ai.Embedder,
	extractor ai.EntityExtractor,
	logger *slog.Logger,
) (processor, error) {
	if thoughts == nil {
		return nil, fmt.Errorf("thought store required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("entity extractor required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &enrichProcessor{
		thoughts:  thoughts,
		embedder:  embedder,
		extractor: extractor,
		logger:    logger.With("processor", "enrich"),
	}, nil
}

// process extracts and embeds entities for the specified thoughts.
// Extraction runs per thought; the extractor does not support
// batching. Entity tuple embeddings are batched per thought.
func (ep *enrichProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("enriching thoughts", "thoughts", len(ids))

	slices.Sort(ids)

	thoughts, err := ep.thoughts.GetThoughts(ctx, ids...)
	if err != nil {
		return err
	}

	var enrichErrors []error
	for _, thought := range thoughts {
		entries, err := ep.buildEntries(ctx, thought)
		if err != nil {
			enrichErrors = append(enrichErrors, fmt.Errorf("thought %d enrichment failed: %w", thought.Id, err))
			continue
		}
		thought.Entries = entries
	}

	if _, err := ep.thoughts.UpdateThoughts(ctx, thoughts...); err != nil {
		enrichErrors = append(enrichErrors, fmt.Errorf("update thoughts failed: %w", err))
	}

	if len(enrichErrors) > 0 {
		return errors.Join(enrichErrors...)
	}
	return nil
}

// buildEntries runs extraction and embedding for one thought.
func (ep *enrichProcessor) buildEntries(ctx context.Context, thought *core.Thought) ([]core.SemanticEntry, error) {
	extracted, err := ep.extractor.ExtractEntities(ctx, thought.Content)
	if err != nil {
		return nil, err
	}
	if len(extracted) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	entries := make([]core.SemanticEntry, 0, len(extracted))
	for _, ee := range extracted {
		entityType, ok := core.ParseEntityType(ee.Type)
		if !ok {
			ep.logger.Debug("skipping entity with unknown type",
				"thoughtId", thought.Id,
				"type", ee.Type,
				"value", ee.Value)
			continue
		}
		entry := core.SemanticEntry{
			ThoughtId:   thought.Id,
			EntityType:  entityType,
			EntityValue: ee.Value,
			Confidence:  ee.Confidence,
			Context:     ee.Context,
			ExtractedAt: now,
		}
		entry.Id = core.IDFromContent(entry.Tuple())
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	tuples := make([]string, len(entries))
	for i := range entries {
		tuples[i] = entries[i].Tuple()
	}
	vectors, err := ep.embedder.EmbedTexts(ctx, tuples)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if i < len(vectors) {
			entries[i].Vector = vectors[i]
		}
	}

	return entries, nil
}
