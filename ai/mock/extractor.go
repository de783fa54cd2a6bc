package mock

import (
	"context"
	"strings"

	"github.com/engramdb/engram/ai"
)

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, uses default simple word extraction.
	ExtractEntitiesFunc func(ctx context.Context, text string) ([]ai.ExtractedEntity, error)

	callCount int
}

// NewMockEntityExtractor creates a mock entity extractor with default behavior.
// Returns the concrete type so tests can inject behavior and assert on calls.
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities extracts simple mock entities from text.
// Default behavior: splits text by spaces and creates activity entities
// from the first few words, with decreasing confidence.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
	m.callCount++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return []ai.ExtractedEntity{}, nil
	}

	entities := make([]ai.ExtractedEntity, 0, len(words))
	confidence := 1.0
	for i, word := range words {
		if i >= 5 { // Limit to 5 entities
			break
		}

		word = strings.Trim(word, ".,!?;:\"'()[]{}—–-")
		if word == "" {
			continue
		}

		entityType := "activity"
		if len(word) > 5 {
			entityType = "event"
		}

		entities = append(entities, ai.ExtractedEntity{
			Type:       entityType,
			Value:      word,
			Confidence: confidence,
			Context:    text,
		})

		// Decrease confidence for each subsequent entity
		if confidence > 0.2 {
			confidence -= 0.1
		}
	}

	return entities, nil
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
}
