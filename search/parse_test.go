package search

import (
	"testing"
	"time"

	"github.com/engramdb/engram/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery_Plain(t *testing.T) {
	query := ParseQuery("coffee with sarah", "user-1", Pagination{Page: 2, PageSize: 5})

	assert.Equal(t, "coffee with sarah", query.QueryText)
	assert.Equal(t, "user-1", query.UserId)
	assert.Nil(t, query.EntityFilter)
	assert.Nil(t, query.DateRange)
	assert.Equal(t, 2, query.Pagination.Page)
	assert.Equal(t, 5, query.Pagination.PageSize)
}

func TestParseQuery_TypeFilter(t *testing.T) {
	t.Run("single type", func(t *testing.T) {
		query := ParseQuery("type:person sarah", "user-1", Pagination{})
		require.NotNil(t, query.EntityFilter)
		assert.Equal(t, []core.EntityType{core.EntityTypePerson}, query.EntityFilter.Types)
		assert.Equal(t, "sarah", query.QueryText)
	})

	t.Run("multiple types", func(t *testing.T) {
		query := ParseQuery("type:person type:location trip", "user-1", Pagination{})
		require.NotNil(t, query.EntityFilter)
		assert.Equal(t, []core.EntityType{core.EntityTypePerson, core.EntityTypeLocation}, query.EntityFilter.Types)
	})

	t.Run("repeated type deduplicated", func(t *testing.T) {
		query := ParseQuery("type:person type:person sarah", "user-1", Pagination{})
		require.NotNil(t, query.EntityFilter)
		assert.Len(t, query.EntityFilter.Types, 1)
	})

	t.Run("unknown type ignored", func(t *testing.T) {
		query := ParseQuery("type:planet mars", "user-1", Pagination{})
		assert.Nil(t, query.EntityFilter)
		assert.Equal(t, "mars", query.QueryText)
	})

	t.Run("uppercase type accepted", func(t *testing.T) {
		query := ParseQuery("TYPE:Person sarah", "user-1", Pagination{})
		require.NotNil(t, query.EntityFilter)
		assert.Equal(t, core.EntityTypePerson, query.EntityFilter.Types[0])
	})
}

func TestParseQuery_DateSyntax(t *testing.T) {
	t.Run("after and before", func(t *testing.T) {
		query := ParseQuery("after:2024-01-01 before:2024-06-30 hiking", "user-1", Pagination{})
		require.NotNil(t, query.DateRange)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), query.DateRange.Start)
		assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), query.DateRange.End)
		assert.Equal(t, "hiking", query.QueryText)
	})

	t.Run("after alone gets open end", func(t *testing.T) {
		query := ParseQuery("after:2024-01-01 hiking", "user-1", Pagination{})
		require.NotNil(t, query.DateRange)
		assert.False(t, query.DateRange.End.IsZero())
		assert.True(t, query.DateRange.End.After(query.DateRange.Start))
	})

	t.Run("last week", func(t *testing.T) {
		before := time.Now().UTC()
		query := ParseQuery("coffee last week", "user-1", Pagination{})
		require.NotNil(t, query.DateRange)

		expectedStart := before.AddDate(0, 0, -7)
		assert.WithinDuration(t, expectedStart, query.DateRange.Start, time.Minute)
		assert.WithinDuration(t, before, query.DateRange.End, time.Minute)
		assert.Equal(t, "coffee", query.QueryText)
	})

	t.Run("yesterday", func(t *testing.T) {
		before := time.Now().UTC()
		query := ParseQuery("what happened yesterday", "user-1", Pagination{})
		require.NotNil(t, query.DateRange)

		expectedStart := before.AddDate(0, 0, -1)
		assert.WithinDuration(t, expectedStart, query.DateRange.Start, time.Minute)
		assert.Equal(t, "what happened", query.QueryText)
	})

	t.Run("malformed date ignored", func(t *testing.T) {
		query := ParseQuery("after:not-a-date hiking", "user-1", Pagination{})
		assert.Nil(t, query.DateRange)
		assert.Equal(t, "after:not-a-date hiking", query.QueryText)
	})
}

func TestParseQuery_Combined(t *testing.T) {
	query := ParseQuery("type:person after:2024-03-01 dinner with tom", "user-1", Pagination{})

	require.NotNil(t, query.EntityFilter)
	require.NotNil(t, query.DateRange)
	assert.Equal(t, "dinner with tom", query.QueryText)
}

func TestParseQuery_WhitespaceCollapsed(t *testing.T) {
	query := ParseQuery("type:person   sarah   coffee", "user-1", Pagination{})
	assert.Equal(t, "sarah coffee", query.QueryText)
}
