package badger

import (
	"context"
	"testing"
	"time"

	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVectorIndex(t *testing.T) storage.VectorIndex {
	t.Helper()
	_, vectors, backend, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		vectors.Close()
		backend.Close()
	})
	return vectors
}

func thoughtMeta(userID string, thoughtID core.ID) core.VectorMetadata {
	return core.VectorMetadata{
		Kind:      core.VectorKindThought,
		ThoughtId: thoughtID,
		UserId:    userID,
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestVectorIndex_StoreAndSearch(t *testing.T) {
	vectors := newTestVectorIndex(t)
	ctx := context.Background()

	require.NoError(t, vectors.Store(ctx, "thought_1", []float32{1, 0, 0}, thoughtMeta("user-1", 1)))
	require.NoError(t, vectors.Store(ctx, "thought_2", []float32{0.5, 0.5, 0}, thoughtMeta("user-1", 2)))
	require.NoError(t, vectors.Store(ctx, "thought_3", []float32{0, 0, 1}, thoughtMeta("user-1", 3)))

	matches, err := vectors.Search(ctx, []float32{1, 0, 0}, 10, "user-1", "")
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Ordered by dot product descending
	assert.Equal(t, "thought_1", matches[0].VectorId)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	assert.Equal(t, "thought_2", matches[1].VectorId)
	assert.InDelta(t, 0.5, matches[1].Score, 1e-6)
	assert.Equal(t, "thought_3", matches[2].VectorId)
	assert.InDelta(t, 0.0, matches[2].Score, 1e-6)
}

func TestVectorIndex_StoreIsUpsert(t *testing.T) {
	vectors := newTestVectorIndex(t)
	ctx := context.Background()

	require.NoError(t, vectors.Store(ctx, "thought_1", []float32{0, 1, 0}, thoughtMeta("user-1", 1)))
	require.NoError(t, vectors.Store(ctx, "thought_1", []float32{1, 0, 0}, thoughtMeta("user-1", 1)))

	matches, err := vectors.Search(ctx, []float32{1, 0, 0}, 10, "user-1", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestVectorIndex_SearchTopK(t *testing.T) {
	vectors := newTestVectorIndex(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		id := core.ID(i)
		require.NoError(t, vectors.Store(ctx, string(rune('a'+i)), []float32{float32(i), 0, 0}, thoughtMeta("user-1", id)))
	}

	matches, err := vectors.Search(ctx, []float32{1, 0, 0}, 2, "user-1", "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.True(t, matches[0].Score >= matches[1].Score)
}

func TestVectorIndex_SearchFiltersByUser(t *testing.T) {
	vectors := newTestVectorIndex(t)
	ctx := context.Background()

	require.NoError(t, vectors.Store(ctx, "thought_1", []float32{1, 0, 0}, thoughtMeta("alice", 1)))
	require.NoError(t, vectors.Store(ctx, "thought_2", []float32{1, 0, 0}, thoughtMeta("bob", 2)))

	matches, err := vectors.Search(ctx, []float32{1, 0, 0}, 10, "alice", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "alice", matches[0].Meta.UserId)
}

func TestVectorIndex_SearchFiltersByEntityType(t *testing.T) {
	vectors := newTestVectorIndex(t)
	ctx := context.Background()

	entityMeta := core.VectorMetadata{
		Kind:        core.VectorKindEntity,
		ThoughtId:   1,
		UserId:      "user-1",
		EntityId:    7,
		EntityType:  string(core.EntityTypePerson),
		EntityValue: "sarah",
		Confidence:  0.9,
	}
	require.NoError(t, vectors.Store(ctx, "entity_7", []float32{1, 0, 0}, entityMeta))
	require.NoError(t, vectors.Store(ctx, "thought_1", []float32{1, 0, 0}, thoughtMeta("user-1", 1)))

	matches, err := vectors.Search(ctx, []float32{1, 0, 0}, 10, "user-1", string(core.EntityTypePerson))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "entity_7", matches[0].VectorId)
	assert.Equal(t, "sarah", matches[0].Meta.EntityValue)
}

func TestVectorIndex_Delete(t *testing.T) {
	vectors := newTestVectorIndex(t)
	ctx := context.Background()

	require.NoError(t, vectors.Store(ctx, "thought_1", []float32{1, 0, 0}, thoughtMeta("user-1", 1)))
	require.NoError(t, vectors.Delete(ctx, "thought_1"))

	matches, err := vectors.Search(ctx, []float32{1, 0, 0}, 10, "user-1", "")
	require.NoError(t, err)
	assert.Empty(t, matches)

	// Deleting a missing id is not an error
	assert.NoError(t, vectors.Delete(ctx, "thought_404"))
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 11.0, dotProduct([]float32{1, 2, 3}, []float32{3, 1, 2}), 1e-6)
	assert.InDelta(t, 0.0, dotProduct(nil, []float32{1}), 1e-6)
	// Mismatched lengths use the shorter vector
	assert.InDelta(t, 2.0, dotProduct([]float32{2, 5}, []float32{1}), 1e-6)
}
