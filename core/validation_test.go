package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validThought() *Thought {
	return &Thought{
		UserId:    "user-1",
		Content:   "Had coffee with Sarah this morning",
		Timestamp: time.Now().UTC().Add(-time.Hour),
	}
}

func TestValidateThought(t *testing.T) {
	t.Run("valid thought", func(t *testing.T) {
		require.NoError(t, ValidateThought(validThought()))
	})

	t.Run("nil thought", func(t *testing.T) {
		err := ValidateThought(nil)
		assert.ErrorIs(t, err, ErrInvalidThought)
	})

	t.Run("empty content", func(t *testing.T) {
		thought := validThought()
		thought.Content = ""
		err := ValidateThought(thought)
		assert.ErrorIs(t, err, ErrInvalidThought)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("empty user id", func(t *testing.T) {
		thought := validThought()
		thought.UserId = ""
		err := ValidateThought(thought)
		assert.ErrorIs(t, err, ErrEmptyUserId)
	})

	t.Run("future timestamp", func(t *testing.T) {
		thought := validThought()
		thought.Timestamp = time.Now().Add(time.Hour)
		err := ValidateThought(thought)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})

	t.Run("zero id is valid", func(t *testing.T) {
		thought := validThought()
		thought.Id = 0
		require.NoError(t, ValidateThought(thought))
	})

	t.Run("no entries is valid", func(t *testing.T) {
		thought := validThought()
		thought.Entries = nil
		require.NoError(t, ValidateThought(thought))
	})
}

func TestValidateEntry(t *testing.T) {
	valid := func() *SemanticEntry {
		return &SemanticEntry{
			EntityType:  EntityTypePerson,
			EntityValue: "sarah",
			Confidence:  0.9,
		}
	}

	t.Run("valid entry", func(t *testing.T) {
		require.NoError(t, ValidateEntry(valid()))
	})

	t.Run("nil entry", func(t *testing.T) {
		assert.ErrorIs(t, ValidateEntry(nil), ErrInvalidEntry)
	})

	t.Run("empty value", func(t *testing.T) {
		entry := valid()
		entry.EntityValue = ""
		assert.ErrorIs(t, ValidateEntry(entry), ErrEmptyEntityValue)
	})

	t.Run("unknown type", func(t *testing.T) {
		entry := valid()
		entry.EntityType = "planet"
		assert.ErrorIs(t, ValidateEntry(entry), ErrUnknownEntityType)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		entry := valid()
		entry.Confidence = 1.5
		assert.ErrorIs(t, ValidateEntry(entry), ErrConfidenceOutOfRange)

		entry.Confidence = -0.1
		assert.ErrorIs(t, ValidateEntry(entry), ErrConfidenceOutOfRange)
	})

	t.Run("missing vector is valid", func(t *testing.T) {
		entry := valid()
		entry.Vector = nil
		require.NoError(t, ValidateEntry(entry))
	})
}

func TestIsValidTimestamp(t *testing.T) {
	assert.True(t, IsValidTimestamp(time.Now().Add(-time.Minute)))
	assert.False(t, IsValidTimestamp(time.Now().Add(time.Minute)))
}
