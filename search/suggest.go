package search

import (
	"context"
	"fmt"
	"strings"
)

// suggestScanLimit caps how many thoughts the token phase scans.
const suggestScanLimit = 50

// Suggest produces autocomplete strings for a prefix, scoped to one
// user. Entity values starting with the prefix come first, ordered by
// descending occurrence frequency. If fewer than limit were found, the
// remainder is filled with alphanumeric content tokens that start with
// the prefix and are strictly longer than it, drawn from up to 50
// matching thoughts. Duplicates are dropped case-insensitively.
func (e *Engine) Suggest(ctx context.Context, prefix, userID string, limit int) ([]string, error) {
	if prefix == "" || limit <= 0 {
		return []string{}, nil
	}

	values, err := e.thoughts.CountEntityValuesByPrefix(ctx, userID, prefix, limit)
	if err != nil {
		e.logger.Error("error fetching entity value suggestions", "prefix", prefix, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}

	suggestions := make([]string, 0, limit)
	seen := make(map[string]bool, limit)
	for _, v := range values {
		key := strings.ToLower(v.Value)
		if seen[key] {
			continue
		}
		seen[key] = true
		suggestions = append(suggestions, v.Value)
		if len(suggestions) >= limit {
			return suggestions, nil
		}
	}

	thoughts, err := e.thoughts.FindByContentSubstring(ctx, userID, prefix, suggestScanLimit)
	if err != nil {
		e.logger.Error("error fetching thoughts for token suggestions", "prefix", prefix, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}

	lowerPrefix := strings.ToLower(prefix)
	for _, thought := range thoughts {
		for _, token := range alphanumericTokens(thought.Content) {
			if len(token) <= len(prefix) {
				continue
			}
			key := strings.ToLower(token)
			if !strings.HasPrefix(key, lowerPrefix) || seen[key] {
				continue
			}
			seen[key] = true
			suggestions = append(suggestions, token)
			if len(suggestions) >= limit {
				return suggestions, nil
			}
		}
	}

	return suggestions, nil
}
