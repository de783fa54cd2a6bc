// Copyright 2025 The Engram Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"time"
)

// ValidateThought validates a Thought according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - UserId must not be empty
//   - Timestamp must not be in the future
//
// NOT validated (populated by processors):
//   - Entries (can be empty until the extraction processor runs)
//   - ID (0 is valid from database sequences)
func ValidateThought(thought *Thought) error {
	if thought == nil {
		return fmt.Errorf("%w: thought is nil", ErrInvalidThought)
	}

	if thought.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidThought, ErrEmptyContent)
	}

	if thought.UserId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidThought, ErrEmptyUserId)
	}

	if !IsValidTimestamp(thought.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidThought, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEntry validates a SemanticEntry according to domain rules.
//
// Validation rules:
//   - EntityValue must not be empty
//   - EntityType must be one of the known types
//   - Confidence must be in [0,1]
//
// NOT validated (populated by processors):
//   - Vector (can be empty until embedded)
func ValidateEntry(entry *SemanticEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.EntityValue == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyEntityValue)
	}

	if _, ok := ParseEntityType(string(entry.EntityType)); !ok {
		return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrUnknownEntityType, entry.EntityType)
	}

	if entry.Confidence < 0 || entry.Confidence > 1 {
		return fmt.Errorf("%w: %w: %v", ErrInvalidEntry, ErrConfidenceOutOfRange, entry.Confidence)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
