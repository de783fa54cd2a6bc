package search

import (
	"time"

	"github.com/engramdb/engram/core"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// oversampleFactor compensates for candidates later dropped by
	// relational filtering.
	oversampleFactor = 2
)

// Query describes one search invocation. UserId is mandatory; search
// is always scoped to a single owner.
type Query struct {
	QueryText    string
	UserId       string
	EntityFilter *EntityFilter
	DateRange    *DateRange
	Pagination   Pagination
}

// EntityFilter narrows results by entity types and values.
//
// Only the first entry of Types is pushed down to the vector index;
// the full set is applied when building each result's MatchingEntries.
// Multi-type filters therefore degrade to post-hoc filtering.
type EntityFilter struct {
	Types  []core.EntityType
	Values []string
}

// DateRange bounds thought timestamps, inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Pagination selects a page of the ranked result set. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

// normalize clamps pagination to valid bounds, applying defaults for
// zero values.
func (p Pagination) normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// Match records one occurrence of a query word in a thought's content.
// Matches are built fresh per query and never persisted.
type Match struct {
	// Field names the matched field, currently always "content".
	Field string
	// Text is the matched query word.
	Text string
	// Start and End are character offsets into the content.
	Start int
	End   int
	// Highlight is the content with this occurrence wrapped in
	// <mark> markers.
	Highlight string
}

// Score carries the four independent relevance signals and their
// weighted combination. All components are in [0,1].
type Score struct {
	Semantic   float64
	Keyword    float64
	Recency    float64
	Confidence float64
	Final      float64
}

// Result is one ranked search hit.
type Result struct {
	Thought *core.Thought
	// MatchingEntries is the subset of the thought's entries that
	// satisfy the query's entity filter.
	MatchingEntries []core.SemanticEntry
	Matches         []Match
	Score           Score
	// Rank is 1-based, assigned after sorting; 0 until then.
	Rank int
}

// Response is the paginated outcome of a Search call.
type Response struct {
	Results []*Result
	// TotalCount is the size of the full ranked candidate set before
	// pagination. It is bounded by vector-search oversampling, not the
	// true count of matching thoughts in the corpus.
	TotalCount int
	Page       int
	PageSize   int
	QueryText  string
	// SearchTimeMs is filled by the caller, not by the engine.
	SearchTimeMs int64
	// Suggestions is populated by a separate Suggest call, not by
	// Search.
	Suggestions []string
}
