package search

import (
	"context"
	"testing"
	"time"

	"github.com/engramdb/engram/ai/mock"
	"github.com/engramdb/engram/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addThoughtWithEntities(t *testing.T, engine *Engine, userID, content string, values ...string) {
	t.Helper()
	ctx := context.Background()

	thought := &core.Thought{
		UserId:    userID,
		Content:   content,
		Timestamp: time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond),
	}
	for _, value := range values {
		entry := core.SemanticEntry{
			EntityType:  core.EntityTypeActivity,
			EntityValue: value,
			Confidence:  0.9,
		}
		entry.Id = core.IDFromContent(entry.Tuple())
		thought.Entries = append(thought.Entries, entry)
	}

	_, err := engine.thoughts.AddThoughts(ctx, thought)
	require.NoError(t, err)
}

func TestSuggest_EntityValuesByFrequency(t *testing.T) {
	engine, _, _ := newTestEngine(t, mock.NewMockEmbedder())

	// "machine learning" appears twice, "marathon" once
	addThoughtWithEntities(t, engine, "user-1", "studied machine learning", "machine learning")
	addThoughtWithEntities(t, engine, "user-1", "more machine learning reading", "machine learning")
	addThoughtWithEntities(t, engine, "user-1", "signed up for the marathon", "marathon")

	suggestions, err := engine.Suggest(context.Background(), "ma", "user-1", 10)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(suggestions), 2)
	assert.Equal(t, "machine learning", suggestions[0])
	assert.Equal(t, "marathon", suggestions[1])
}

func TestSuggest_PrefixIsCaseInsensitive(t *testing.T) {
	engine, _, _ := newTestEngine(t, mock.NewMockEmbedder())

	addThoughtWithEntities(t, engine, "user-1", "coffee with Sarah", "Sarah")

	suggestions, err := engine.Suggest(context.Background(), "sa", "user-1", 10)
	require.NoError(t, err)

	require.Len(t, suggestions, 1)
	// Display casing is preserved
	assert.Equal(t, "Sarah", suggestions[0])
}

func TestSuggest_FallsBackToContentTokens(t *testing.T) {
	engine, _, _ := newTestEngine(t, mock.NewMockEmbedder())

	// No entity values start with the prefix; the token phase picks it
	// up from content.
	addThoughtWithEntities(t, engine, "user-1", "planning the Barcelona trip")

	suggestions, err := engine.Suggest(context.Background(), "barc", "user-1", 10)
	require.NoError(t, err)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "Barcelona", suggestions[0])
}

func TestSuggest_TokensMustBeLongerThanPrefix(t *testing.T) {
	engine, _, _ := newTestEngine(t, mock.NewMockEmbedder())

	addThoughtWithEntities(t, engine, "user-1", "run in the park")

	suggestions, err := engine.Suggest(context.Background(), "run", "user-1", 10)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggest_DeduplicatesAcrossPhases(t *testing.T) {
	engine, _, _ := newTestEngine(t, mock.NewMockEmbedder())

	// "marathon" exists both as an entity value and as a content token.
	addThoughtWithEntities(t, engine, "user-1", "training for the marathon", "marathon")

	suggestions, err := engine.Suggest(context.Background(), "mar", "user-1", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"marathon"}, suggestions)
}

func TestSuggest_RespectsLimit(t *testing.T) {
	engine, _, _ := newTestEngine(t, mock.NewMockEmbedder())

	addThoughtWithEntities(t, engine, "user-1", "notes", "maple", "marble", "margin", "market")

	suggestions, err := engine.Suggest(context.Background(), "ma", "user-1", 2)
	require.NoError(t, err)
	assert.Len(t, suggestions, 2)
}

func TestSuggest_ScopedToUser(t *testing.T) {
	engine, _, _ := newTestEngine(t, mock.NewMockEmbedder())

	addThoughtWithEntities(t, engine, "alice", "coffee with sarah", "sarah")
	addThoughtWithEntities(t, engine, "bob", "lunch with sam", "sam")

	suggestions, err := engine.Suggest(context.Background(), "sa", "alice", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"sarah"}, suggestions)
}

func TestSuggest_EmptyPrefixOrLimit(t *testing.T) {
	engine, _, _ := newTestEngine(t, mock.NewMockEmbedder())

	suggestions, err := engine.Suggest(context.Background(), "", "user-1", 10)
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	suggestions, err = engine.Suggest(context.Background(), "ma", "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
