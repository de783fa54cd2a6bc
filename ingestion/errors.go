package ingestion

import "errors"

var (
	// ErrThoughtStoreRequired is returned when a thought store is not provided.
	ErrThoughtStoreRequired = errors.New("thought store required")

	// ErrEngineRequired is returned when a search engine is not provided.
	ErrEngineRequired = errors.New("search engine required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
