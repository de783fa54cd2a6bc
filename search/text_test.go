package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple words", "coffee with sarah", []string{"coffee", "with", "sarah"}},
		{"punctuation trimmed", "Hello, world!", []string{"hello", "world"}},
		{"mixed case lowered", "Machine Learning", []string{"machine", "learning"}},
		{"empty string", "", []string{}},
		{"only punctuation", "... !!!", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.text))
		})
	}
}

func TestKeywordOverlap(t *testing.T) {
	t.Run("all query words present", func(t *testing.T) {
		score := keywordOverlap(tokenize("machine learning"), "I love machine learning and coffee")
		assert.Equal(t, 1.0, score)
	})

	t.Run("no query words present", func(t *testing.T) {
		score := keywordOverlap(tokenize("quantum physics"), "I love machine learning")
		assert.Equal(t, 0.0, score)
	})

	t.Run("half of query words present", func(t *testing.T) {
		score := keywordOverlap(tokenize("machine surfing"), "machine learning is fun")
		assert.Equal(t, 0.5, score)
	})

	t.Run("whole word matching only", func(t *testing.T) {
		// "machine" is not matched by "machines"
		score := keywordOverlap(tokenize("machine"), "all the machines hum")
		assert.Equal(t, 0.0, score)
	})

	t.Run("case insensitive", func(t *testing.T) {
		score := keywordOverlap(tokenize("COFFEE"), "Had coffee this morning")
		assert.Equal(t, 1.0, score)
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Equal(t, 0.0, keywordOverlap(nil, "anything"))
	})
}

func TestAlphanumericTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"words and punctuation", "machine-learning, v2!", []string{"machine", "learning", "v2"}},
		{"casing preserved", "Blue Bottle", []string{"Blue", "Bottle"}},
		{"empty", "", nil},
		{"digits", "room 404", []string{"room", "404"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, alphanumericTokens(tt.text))
		})
	}
}
