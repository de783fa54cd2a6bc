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

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/engramdb/engram/ai"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/storage"
)

const contentPreviewLimit = 200

// Engine is the hybrid search engine. It holds no cross-call mutable
// state; every call runs as an independent unit of work.
type Engine struct {
	thoughts storage.ThoughtStore
	vectors  storage.VectorIndex
	embedder ai.Embedder
	weights  Weights
	monitor  Monitor
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithWeights overrides the default scoring weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) error {
		e.weights = w
		return nil
	}
}

// WithMonitor sets a pipeline observer.
// Default is a no-op monitor.
func WithMonitor(m Monitor) Option {
	return func(e *Engine) error {
		if m == nil {
			m = &noopMonitor{}
		}
		e.monitor = m
		return nil
	}
}

// withClock overrides the time source. Used by tests to pin recency
// scoring.
func withClock(now func() time.Time) Option {
	return func(e *Engine) error {
		e.now = now
		return nil
	}
}

// NewEngine creates a search engine over the given store, index and
// embedder.
func NewEngine(
	thoughts storage.ThoughtStore,
	vectors storage.VectorIndex,
	embedder ai.Embedder,
	opts ...Option,
) (*Engine, error) {
	if thoughts == nil {
		return nil, ErrThoughtStoreRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		thoughts: thoughts,
		vectors:  vectors,
		embedder: embedder,
		weights:  DefaultWeights(),
		monitor:  &noopMonitor{},
		logger:   slog.Default().With("component", "search-engine"),
		now:      time.Now,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ThoughtVectorID returns the vector id used for a thought's content
// vector.
func ThoughtVectorID(id core.ID) string {
	return fmt.Sprintf("thought_%d", id)
}

// EntityVectorID returns the vector id used for an entity vector.
func EntityVectorID(id core.ID) string {
	return fmt.Sprintf("entity_%d", id)
}

// IndexThought embeds the thought's content and upserts it into the
// vector index, then upserts every entry that already carries a
// vector (entity embeddings are computed upstream). Re-indexing the
// same thought overwrites its prior vectors.
//
// Indexing is not transactional. On an entity write failure the engine
// keeps going and records the failure in the report; the returned
// error wraps ErrIndexing and the report shows what was written so the
// caller can re-index. A report is returned whenever the thought
// vector was written.
func (e *Engine) IndexThought(ctx context.Context, thought *core.Thought, entries []core.SemanticEntry) (*IndexReport, error) {
	vector, err := e.embedder.EmbedText(ctx, thought.Content)
	if err != nil {
		e.logger.Error("error generating embedding for thought", "thoughtId", thought.Id, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrIndexing, err)
	}

	report := &IndexReport{}

	thoughtVecID := ThoughtVectorID(thought.Id)
	meta := core.VectorMetadata{
		Kind:           core.VectorKindThought,
		ThoughtId:      thought.Id,
		UserId:         thought.UserId,
		Timestamp:      thought.Timestamp,
		ContentPreview: contentPreview(thought.Content),
	}
	if err := e.vectors.Store(ctx, thoughtVecID, vector, meta); err != nil {
		e.logger.Error("error storing thought vector", "thoughtId", thought.Id, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrIndexing, err)
	}
	report.Written = append(report.Written, thoughtVecID)

	var firstEntityErr error
	for _, entry := range entries {
		if len(entry.Vector) == 0 {
			continue
		}
		entityVecID := EntityVectorID(entry.Id)
		entityMeta := core.VectorMetadata{
			Kind:        core.VectorKindEntity,
			ThoughtId:   thought.Id,
			UserId:      thought.UserId,
			Timestamp:   thought.Timestamp,
			EntityId:    entry.Id,
			EntityType:  string(entry.EntityType),
			EntityValue: entry.EntityValue,
			Confidence:  entry.Confidence,
		}
		if err := e.vectors.Store(ctx, entityVecID, entry.Vector, entityMeta); err != nil {
			e.logger.Error("error storing entity vector",
				"thoughtId", thought.Id,
				"entityId", entry.Id,
				"err", err)
			report.Failed = append(report.Failed, entityVecID)
			if firstEntityErr == nil {
				firstEntityErr = err
			}
			continue
		}
		report.Written = append(report.Written, entityVecID)
	}

	if firstEntityErr != nil {
		return report, fmt.Errorf("%w: %w", ErrIndexing, firstEntityErr)
	}
	return report, nil
}

// RemoveFromIndex deletes the thought-level vector. Entity vectors are
// not enumerated here; callers that track entry ids should delete
// those separately.
func (e *Engine) RemoveFromIndex(ctx context.Context, thoughtID core.ID) error {
	if err := e.vectors.Delete(ctx, ThoughtVectorID(thoughtID)); err != nil {
		e.logger.Error("error deleting thought vector", "thoughtId", thoughtID, "err", err)
		return fmt.Errorf("%w: %w", ErrIndexing, err)
	}
	return nil
}

// Search runs the query pipeline: embed the query text, oversample
// candidates from the vector index, merge entity hits into their
// thoughts, fetch and filter from the relational store, score each
// candidate on four signals, rank, and paginate.
func (e *Engine) Search(ctx context.Context, query *Query) (*Response, error) {
	pagination := query.Pagination.normalize()
	e.monitor.Start(query)

	vector, err := e.embedder.EmbedText(ctx, query.QueryText)
	if err != nil {
		e.logger.Error("error generating embedding for query", "query", query.QueryText, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	e.monitor.AfterEmbedding(len(vector))

	// Oversample so relational filtering can drop candidates without
	// starving the page. Only the first requested entity type is
	// pushed down to the index.
	topK := pagination.PageSize * oversampleFactor
	entityType := ""
	if query.EntityFilter != nil && len(query.EntityFilter.Types) > 0 {
		entityType = string(query.EntityFilter.Types[0])
	}

	matches, err := e.vectors.Search(ctx, vector, topK, query.UserId, entityType)
	if err != nil {
		e.logger.Error("error querying vector index", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	e.monitor.AfterVectorSearch(matches)

	// Merge matches into thought candidates. Entity hits surface their
	// thought with the max score seen for it.
	scores := make(map[core.ID]float64)
	candidateIds := make([]core.ID, 0, len(matches))
	for _, match := range matches {
		thoughtID := match.Meta.ThoughtId
		if thoughtID == 0 {
			continue
		}
		score := float64(match.Score)
		if existing, ok := scores[thoughtID]; ok {
			if score > existing {
				scores[thoughtID] = score
			}
			continue
		}
		scores[thoughtID] = score
		candidateIds = append(candidateIds, thoughtID)
	}
	e.monitor.AfterCandidateMerge(candidateIds)

	// No candidates: return an empty response without touching the
	// relational store.
	if len(candidateIds) == 0 {
		resp := &Response{
			Results:    []*Result{},
			TotalCount: 0,
			Page:       pagination.Page,
			PageSize:   pagination.PageSize,
			QueryText:  query.QueryText,
		}
		e.monitor.Finish(resp)
		return resp, nil
	}

	filter := storage.SearchFilter{
		UserId:    query.UserId,
		Substring: query.QueryText,
	}
	if query.DateRange != nil {
		filter.Start = &query.DateRange.Start
		filter.End = &query.DateRange.End
	}

	thoughts, err := e.thoughts.FindForSearch(ctx, candidateIds, filter)
	if err != nil {
		e.logger.Error("error fetching candidate thoughts", "candidates", len(candidateIds), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	e.monitor.AfterRelationalFetch(thoughts)

	// Re-establish candidate-discovery order; the store does not
	// guarantee one.
	byID := make(map[core.ID]*core.Thought, len(thoughts))
	for _, t := range thoughts {
		byID[t.Id] = t
	}

	queryWords := tokenize(query.QueryText)
	now := e.now().UTC()

	results := make([]*Result, 0, len(thoughts))
	for _, id := range candidateIds {
		thought, ok := byID[id]
		if !ok {
			continue
		}

		confidences := make([]float64, 0, len(thought.Entries))
		for _, entry := range thought.Entries {
			confidences = append(confidences, entry.Confidence)
		}

		score := calculateScore(e.weights,
			scores[id],
			keywordOverlap(queryWords, thought.Content),
			recencyScore(now, thought.Timestamp),
			confidenceScore(confidences),
		)

		result := &Result{
			Thought:         thought,
			MatchingEntries: matchingEntries(thought.Entries, query),
			Matches:         buildMatches(thought.Content, queryWords),
			Score:           score,
		}
		e.monitor.Scored(result)
		results = append(results, result)
	}

	ranked := rankResults(results)
	resp := &Response{
		Results:    paginate(ranked, pagination),
		TotalCount: len(ranked),
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		QueryText:  query.QueryText,
	}
	e.monitor.Finish(resp)
	return resp, nil
}

// matchingEntries selects the thought's entries satisfying the query's
// entity filter and containing the query text as a substring.
func matchingEntries(entries []core.SemanticEntry, query *Query) []core.SemanticEntry {
	var types map[core.EntityType]bool
	var values map[string]bool
	if query.EntityFilter != nil {
		if len(query.EntityFilter.Types) > 0 {
			types = make(map[core.EntityType]bool, len(query.EntityFilter.Types))
			for _, t := range query.EntityFilter.Types {
				types[t] = true
			}
		}
		if len(query.EntityFilter.Values) > 0 {
			values = make(map[string]bool, len(query.EntityFilter.Values))
			for _, v := range query.EntityFilter.Values {
				values[strings.ToLower(v)] = true
			}
		}
	}

	queryText := strings.ToLower(query.QueryText)

	var matched []core.SemanticEntry
	for _, entry := range entries {
		if types != nil && !types[entry.EntityType] {
			continue
		}
		if values != nil && !values[strings.ToLower(entry.EntityValue)] {
			continue
		}
		if queryText != "" && !strings.Contains(strings.ToLower(entry.EntityValue), queryText) {
			continue
		}
		matched = append(matched, entry)
	}
	return matched
}

// contentPreview truncates content for vector metadata. The cut backs
// off to a rune boundary so the preview stays valid UTF-8.
func contentPreview(content string) string {
	if len(content) <= contentPreviewLimit {
		return content
	}
	cut := contentPreviewLimit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
