package search

import (
	"strings"
	"unicode"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"

	contentField = "content"
)

// buildMatches scans the content for every case-insensitive occurrence
// of every query word and records the offsets plus a highlighted copy
// of the content per occurrence. Offsets index the original content.
func buildMatches(content string, queryWords []string) []Match {
	if content == "" || len(queryWords) == 0 {
		return nil
	}

	lowerContent, toOriginal := lowerWithOffsets(content)

	seen := make(map[string]bool, len(queryWords))
	var matches []Match
	for _, word := range queryWords {
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true

		offset := 0
		for {
			idx := strings.Index(lowerContent[offset:], word)
			if idx < 0 {
				break
			}
			lowStart := offset + idx
			lowEnd := lowStart + len(word)
			start := toOriginal[lowStart]
			end := toOriginal[lowEnd]

			matches = append(matches, Match{
				Field:     contentField,
				Text:      word,
				Start:     start,
				End:       end,
				Highlight: content[:start] + markOpen + content[start:end] + markClose + content[end:],
			})

			offset = lowEnd
		}
	}

	return matches
}

// lowerWithOffsets lowercases content rune by rune and returns the
// lowered string together with a table mapping each lowered byte
// offset (plus the terminal offset) back to a byte offset in the
// original content. Lowercasing can change a rune's encoded length,
// so offsets into the lowered string must not index the original
// directly.
func lowerWithOffsets(content string) (string, []int) {
	var lowered strings.Builder
	lowered.Grow(len(content))
	toOriginal := make([]int, 0, len(content)+1)

	for i, r := range content {
		low := string(unicode.ToLower(r))
		lowered.WriteString(low)
		for j := 0; j < len(low); j++ {
			toOriginal = append(toOriginal, i)
		}
	}
	toOriginal = append(toOriginal, len(content))

	return lowered.String(), toOriginal
}
