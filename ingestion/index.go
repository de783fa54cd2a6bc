package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/search"
	"github.com/engramdb/engram/storage"
)

// indexProcessor pushes enriched thoughts into the search engine's
// vector index.
type indexProcessor struct {
	thoughts storage.ThoughtStore
	engine   *search.Engine
	logger   *slog.Logger
}

var _ processor = (*indexProcessor)(nil)

// newIndexProcessor creates an index processor.
func newIndexProcessor(
	thoughts storage.ThoughtStore,
	engine *search.Engine,
	logger *slog.Logger,
) (processor, error) {
	if thoughts == nil {
		return nil, fmt.Errorf("thought store required")
	}
	if engine == nil {
		return nil, fmt.Errorf("search engine required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &indexProcessor{
		thoughts: thoughts,
		engine:   engine,
		logger:   logger.With("processor", "index"),
	}, nil
}

// process indexes the specified thoughts. Partial index reports are
// logged; the error carries the causes.
func (ip *indexProcessor) process(ctx context.Context, ids ...core.ID) error {
	ip.logger.Info("indexing thoughts", "thoughts", len(ids))

	slices.Sort(ids)

	thoughts, err := ip.thoughts.GetThoughts(ctx, ids...)
	if err != nil {
		return err
	}

	var indexErrors []error
	for _, thought := range thoughts {
		report, err := ip.engine.IndexThought(ctx, thought, thought.Entries)
		if err != nil {
			if report != nil && report.Partial() {
				ip.logger.Warn("thought partially indexed",
					"thoughtId", thought.Id,
					"written", len(report.Written),
					"failed", len(report.Failed))
			}
			indexErrors = append(indexErrors, fmt.Errorf("thought %d indexing failed: %w", thought.Id, err))
		}
	}

	if len(indexErrors) > 0 {
		return errors.Join(indexErrors...)
	}
	return nil
}
