package reindex

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/storage"
	"github.com/engramdb/engram/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIteratorStore(t *testing.T) storage.ThoughtStore {
	t.Helper()
	thoughts, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		thoughts.Close()
		backend.Close()
	})
	return thoughts
}

func seedThoughts(t *testing.T, store storage.ThoughtStore, userID string, count int) []*core.Thought {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	thoughts := make([]*core.Thought, count)
	for i := 0; i < count; i++ {
		thoughts[i] = &core.Thought{
			UserId:    userID,
			Content:   fmt.Sprintf("thought number %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}
	}
	added, err := store.AddThoughts(context.Background(), thoughts...)
	require.NoError(t, err)
	return added
}

func TestThoughtIterator_ForEach(t *testing.T) {
	store := newIteratorStore(t)
	seedThoughts(t, store, "user-1", 5)

	iterator := NewThoughtIterator(store, 2)

	var batches [][]*core.Thought
	err := iterator.ForEach(context.Background(), "user-1", func(batch []*core.Thought) error {
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, batches, 3, "5 thoughts with batch size 2 yield 3 batches")
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
}

func TestThoughtIterator_ScopedToUser(t *testing.T) {
	store := newIteratorStore(t)
	seedThoughts(t, store, "alice", 3)
	seedThoughts(t, store, "bob", 2)

	iterator := NewThoughtIterator(store, 10)

	total := 0
	err := iterator.ForEach(context.Background(), "alice", func(batch []*core.Thought) error {
		for _, thought := range batch {
			assert.Equal(t, "alice", thought.UserId)
		}
		total += len(batch)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestThoughtIterator_EmptyStore(t *testing.T) {
	store := newIteratorStore(t)
	iterator := NewThoughtIterator(store, 10)

	calls := 0
	err := iterator.ForEach(context.Background(), "user-1", func(batch []*core.Thought) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls, "callback should not run without thoughts")
}

func TestThoughtIterator_StopsOnCallbackError(t *testing.T) {
	store := newIteratorStore(t)
	seedThoughts(t, store, "user-1", 6)

	iterator := NewThoughtIterator(store, 2)
	expectedErr := errors.New("processing failed")

	calls := 0
	err := iterator.ForEach(context.Background(), "user-1", func(batch []*core.Thought) error {
		calls++
		if calls == 2 {
			return expectedErr
		}
		return nil
	})
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 2, calls, "iteration should stop at the failing batch")
}

func TestThoughtIterator_ContextCancellation(t *testing.T) {
	store := newIteratorStore(t)
	seedThoughts(t, store, "user-1", 6)

	ctx, cancel := context.WithCancel(context.Background())
	iterator := NewThoughtIterator(store, 2)

	calls := 0
	err := iterator.ForEach(ctx, "user-1", func(batch []*core.Thought) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNewThoughtIterator_DefaultsBatchSize(t *testing.T) {
	store := newIteratorStore(t)
	iterator := NewThoughtIterator(store, 0)
	assert.Equal(t, DefaultBatchSize, iterator.batchSize)

	iterator = NewThoughtIterator(store, -5)
	assert.Equal(t, DefaultBatchSize, iterator.batchSize)
}
