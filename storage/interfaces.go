package storage

import (
	"context"
	"time"

	"github.com/engramdb/engram/core"
)

// SearchFilter narrows a ThoughtStore.FindForSearch lookup. All set
// fields are combined with AND. The zero value matches everything in
// the id set.
type SearchFilter struct {
	// UserId restricts results to thoughts owned by this user.
	UserId string
	// Start and End bound the thought timestamp (inclusive) when
	// non-nil.
	Start *time.Time
	End   *time.Time
	// Substring, when non-empty, requires the thought content to
	// contain it case-insensitively.
	Substring string
}

// EntityValueCount is one frequency-ordered suggestion produced by
// CountEntityValuesByPrefix.
type EntityValueCount struct {
	// Value is the entity value with its original casing preserved.
	Value string
	// Count is the number of semantic entries carrying the value.
	Count int
}

// ThoughtStore provides durable storage for thoughts and the filtered
// lookups used by the search pipeline. Implementations must be
// thread-safe and support concurrent access.
type ThoughtStore interface {
	// AddThoughts adds one or more thoughts to storage.
	// For thoughts with Id=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	// Returns the thoughts with generated IDs and timestamps populated.
	AddThoughts(ctx context.Context, thoughts ...*core.Thought) ([]*core.Thought, error)

	// UpdateThoughts updates existing thoughts.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any thought doesn't exist.
	UpdateThoughts(ctx context.Context, thoughts ...*core.Thought) ([]*core.Thought, error)

	// DeleteThoughts removes thoughts by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any thought doesn't exist.
	DeleteThoughts(ctx context.Context, ids ...core.ID) error

	// GetThought retrieves a single thought by ID.
	// Returns ErrNotFound if the thought doesn't exist.
	GetThought(ctx context.Context, id core.ID) (*core.Thought, error)

	// GetThoughts retrieves multiple thoughts by their IDs.
	// Returns only the thoughts that exist (no error for missing thoughts).
	GetThoughts(ctx context.Context, ids ...core.ID) ([]*core.Thought, error)

	// FindForSearch retrieves the subset of the given thoughts that
	// pass the filter. Order of the result is unspecified; callers
	// re-rank. IDs with no stored thought are silently skipped.
	FindForSearch(ctx context.Context, ids []core.ID, filter SearchFilter) ([]*core.Thought, error)

	// CountEntityValuesByPrefix returns entity values of the user's
	// thoughts starting with prefix (case-insensitive), ordered by
	// occurrence count descending, up to limit.
	CountEntityValuesByPrefix(ctx context.Context, userID, prefix string, limit int) ([]EntityValueCount, error)

	// FindByContentSubstring retrieves up to limit thoughts of the
	// user whose content contains the substring case-insensitively.
	FindByContentSubstring(ctx context.Context, userID, substring string, limit int) ([]*core.Thought, error)

	// GetThoughtsByDateRange retrieves a user's thoughts within a time
	// range. Returns thoughts where start <= Timestamp < end, ordered
	// by timestamp.
	GetThoughtsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*core.Thought, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// VectorIndex provides similarity search over indexed vectors.
// Implementations must be thread-safe.
type VectorIndex interface {
	// Store upserts a vector under the given id, replacing any
	// existing vector and metadata.
	Store(ctx context.Context, id string, vector []float32, meta core.VectorMetadata) error

	// Search returns up to topK matches ordered by score descending
	// (higher means more similar). Matches are restricted to vectors
	// whose metadata carries userID, and to entityType when non-empty.
	Search(ctx context.Context, vector []float32, topK int, userID, entityType string) ([]core.VectorMatch, error)

	// Delete removes the vector with the given id. Deleting a missing
	// id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases index resources.
	Close() error
}
