package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/engramdb/engram/ai"
	"github.com/engramdb/engram/ai/mock"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/search"
	"github.com/engramdb/engram/storage"
	"github.com/engramdb/engram/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	thoughts storage.ThoughtStore
	engine   *search.Engine
	provider ai.Provider
	pipeline *Pipeline
}

func newPipelineFixture(t *testing.T, provider ai.Provider) *pipelineFixture {
	t.Helper()

	thoughts, vectors, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		thoughts.Close()
		vectors.Close()
		backend.Close()
	})

	engine, err := search.NewEngine(thoughts, vectors, provider.Embedder())
	require.NoError(t, err)

	pipeline, err := NewPipeline(thoughts, engine, provider, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &pipelineFixture{
		thoughts: thoughts,
		engine:   engine,
		provider: provider,
		pipeline: pipeline,
	}
}

func TestNewPipeline_Guards(t *testing.T) {
	thoughts, vectors, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		thoughts.Close()
		vectors.Close()
		backend.Close()
	})

	provider := mock.NewMockProvider()
	engine, err := search.NewEngine(thoughts, vectors, provider.Embedder())
	require.NoError(t, err)

	_, err = NewPipeline(nil, engine, provider)
	assert.ErrorIs(t, err, ErrThoughtStoreRequired)

	_, err = NewPipeline(thoughts, nil, provider)
	assert.ErrorIs(t, err, ErrEngineRequired)

	_, err = NewPipeline(thoughts, engine, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestIngest_StoresThoughtsSynchronously(t *testing.T) {
	f := newPipelineFixture(t, mock.NewMockProvider())
	ctx := context.Background()

	added, err := f.pipeline.Ingest(ctx, "user-1", []string{
		"Had coffee with Sarah",
		"Morning run in the park",
	}, nil)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotZero(t, added[0].Id)
	assert.NotZero(t, added[1].Id)

	got, err := f.thoughts.GetThought(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Had coffee with Sarah", got.Content)
	assert.Equal(t, "user-1", got.UserId)
}

func TestIngest_AppliesOptions(t *testing.T) {
	f := newPipelineFixture(t, mock.NewMockProvider())
	ctx := context.Background()

	ts := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Microsecond)
	added, err := f.pipeline.Ingest(ctx, "user-1", []string{"backdated thought"}, &IngestOptions{
		Metadata:  map[string]string{"source": "journal"},
		Timestamp: ts,
	})
	require.NoError(t, err)
	require.Len(t, added, 1)

	got, err := f.thoughts.GetThought(ctx, added[0].Id)
	require.NoError(t, err)
	assert.True(t, ts.Equal(got.Timestamp))
	assert.Equal(t, "journal", got.Metadata["source"])
}

func TestIngest_ValidationFailureStoresNothing(t *testing.T) {
	f := newPipelineFixture(t, mock.NewMockProvider())
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, "user-1", []string{"valid thought", ""}, nil)
	assert.ErrorIs(t, err, core.ErrEmptyContent)

	// The valid thought must not have been stored either
	found, err := f.thoughts.FindByContentSubstring(ctx, "user-1", "valid thought", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestIngest_EmptyUserRejected(t *testing.T) {
	f := newPipelineFixture(t, mock.NewMockProvider())

	_, err := f.pipeline.Ingest(context.Background(), "", []string{"orphan thought"}, nil)
	assert.ErrorIs(t, err, core.ErrEmptyUserId)
}

func TestIngest_EnrichesAsynchronously(t *testing.T) {
	extractor := mock.NewMockEntityExtractor()
	extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return []ai.ExtractedEntity{
			{Type: "person", Value: "sarah", Confidence: 0.95, Context: text},
			{Type: "activity", Value: "coffee", Confidence: 0.9, Context: text},
		}, nil
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor)

	f := newPipelineFixture(t, provider)
	ctx := context.Background()

	added, err := f.pipeline.Ingest(ctx, "user-1", []string{"Had coffee with Sarah"}, nil)
	require.NoError(t, err)
	require.Len(t, added, 1)

	assert.Eventually(t, func() bool {
		got, err := f.thoughts.GetThought(ctx, added[0].Id)
		if err != nil {
			return false
		}
		return len(got.Entries) == 2
	}, 5*time.Second, 20*time.Millisecond, "thought should be enriched in the background")

	got, err := f.thoughts.GetThought(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, core.EntityTypePerson, got.Entries[0].EntityType)
	assert.Equal(t, "sarah", got.Entries[0].EntityValue)
	assert.NotEmpty(t, got.Entries[0].Vector)
	assert.NotZero(t, got.Entries[0].Id)
}

func TestIngest_IndexesAfterEnrichment(t *testing.T) {
	f := newPipelineFixture(t, mock.NewMockProvider())
	ctx := context.Background()

	added, err := f.pipeline.Ingest(ctx, "user-1", []string{"Had coffee with Sarah downtown"}, nil)
	require.NoError(t, err)
	require.Len(t, added, 1)

	// Once the background chain completes the thought is searchable
	assert.Eventually(t, func() bool {
		query := search.ParseQuery("coffee", "user-1", search.Pagination{})
		resp, err := f.engine.Search(ctx, query)
		if err != nil {
			return false
		}
		return resp.TotalCount == 1
	}, 5*time.Second, 20*time.Millisecond, "thought should be indexed in the background")
}

func TestIngest_SkipsUnknownEntityTypes(t *testing.T) {
	extractor := mock.NewMockEntityExtractor()
	extractor.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return []ai.ExtractedEntity{
			{Type: "planet", Value: "mars", Confidence: 0.99, Context: text},
			{Type: "location", Value: "lisbon", Confidence: 0.9, Context: text},
		}, nil
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), extractor)

	f := newPipelineFixture(t, provider)
	ctx := context.Background()

	added, err := f.pipeline.Ingest(ctx, "user-1", []string{"Thinking about Lisbon"}, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, err := f.thoughts.GetThought(ctx, added[0].Id)
		if err != nil {
			return false
		}
		return len(got.Entries) == 1
	}, 5*time.Second, 20*time.Millisecond)

	got, err := f.thoughts.GetThought(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, core.EntityTypeLocation, got.Entries[0].EntityType)
}

func TestIngest_NoContents(t *testing.T) {
	f := newPipelineFixture(t, mock.NewMockProvider())

	added, err := f.pipeline.Ingest(context.Background(), "user-1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, added)
}
