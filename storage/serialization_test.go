package storage

import (
	"testing"
	"time"

	"github.com/engramdb/engram/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalID_RoundTrip(t *testing.T) {
	data := MarshalID(core.ID(42))
	id, err := UnmarshalID(data)
	require.NoError(t, err)
	assert.Equal(t, core.ID(42), id)
}

func TestUnmarshalID_Truncated(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalThought_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 15, 9, 30, 0, 123456000, time.UTC)
	thought := &core.Thought{
		Id:        7,
		UserId:    "user-1",
		Content:   "Had coffee with Sarah at Blue Bottle",
		Timestamp: ts,
		Metadata:  map[string]string{"mood": "great", "location": "downtown"},
		Entries: []core.SemanticEntry{
			{
				Id:            101,
				ThoughtId:     7,
				EntityType:    core.EntityTypePerson,
				EntityValue:   "Sarah",
				Confidence:    0.95,
				Context:       "coffee meetup",
				Relationships: []core.Relationship{
					{SourceEntityId: 101, TargetEntityId: 102, Kind: "met_at", Strength: 0.8},
				},
				Vector:        []float32{0.1, 0.2, 0.3},
				ExtractedAt:   ts.Add(time.Second),
			},
		},
		InsertedAt: ts,
		UpdatedAt:  ts,
	}

	got, err := UnmarshalThought(MarshalThought(thought))
	require.NoError(t, err)

	assert.Equal(t, thought.Id, got.Id)
	assert.Equal(t, thought.UserId, got.UserId)
	assert.Equal(t, thought.Content, got.Content)
	assert.True(t, thought.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, thought.Metadata, got.Metadata)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, thought.Entries[0].EntityValue, got.Entries[0].EntityValue)
	assert.Equal(t, thought.Entries[0].Vector, got.Entries[0].Vector)
	assert.Equal(t, thought.Entries[0].Relationships, got.Entries[0].Relationships)
	assert.InDelta(t, 0.95, got.Entries[0].Confidence, 1e-6)
}

func TestMarshalThought_EmptyFields(t *testing.T) {
	thought := &core.Thought{
		Id:        1,
		UserId:    "user-1",
		Content:   "bare thought",
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
	}

	got, err := UnmarshalThought(MarshalThought(thought))
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
	assert.Empty(t, got.Metadata)
}

func TestMarshalThought_TimestampPrecision(t *testing.T) {
	// Timestamps are stored with microsecond precision
	ts := time.Date(2025, 6, 15, 9, 30, 0, 123456789, time.UTC)
	thought := &core.Thought{Id: 1, UserId: "u", Content: "c", Timestamp: ts}

	got, err := UnmarshalThought(MarshalThought(thought))
	require.NoError(t, err)
	assert.True(t, got.Timestamp.Equal(ts.Truncate(time.Microsecond)))
}

func TestUnmarshalThought_Corrupt(t *testing.T) {
	_, err := UnmarshalThought([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestMarshalIndexedVector_RoundTrip(t *testing.T) {
	rec := &core.IndexedVector{
		VectorId: "thought_7",
		Vector:   []float32{0.5, -0.25, 1.0},
		Meta: core.VectorMetadata{
			Kind:           core.VectorKindThought,
			ThoughtId:      7,
			UserId:         "user-1",
			Timestamp:      time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
			ContentPreview: "Had coffee with Sarah",
		},
	}

	got, err := UnmarshalIndexedVector(MarshalIndexedVector(rec))
	require.NoError(t, err)
	assert.Equal(t, rec.VectorId, got.VectorId)
	assert.Equal(t, rec.Vector, got.Vector)
	assert.Equal(t, rec.Meta.Kind, got.Meta.Kind)
	assert.Equal(t, rec.Meta.ThoughtId, got.Meta.ThoughtId)
	assert.Equal(t, rec.Meta.ContentPreview, got.Meta.ContentPreview)
	assert.True(t, rec.Meta.Timestamp.Equal(got.Meta.Timestamp))
}
