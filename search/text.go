package search

import "strings"

// tokenize splits text into lowercase words with surrounding
// punctuation trimmed. Empty tokens are dropped.
func tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}

	return tokens
}

// keywordOverlap computes |query words ∩ content words| / |query words|
// as a case-insensitive whole-word set overlap. Returns 0 when the
// query has no words.
func keywordOverlap(queryWords []string, content string) float64 {
	if len(queryWords) == 0 {
		return 0
	}

	contentSet := make(map[string]bool)
	for _, word := range tokenize(content) {
		contentSet[word] = true
	}

	querySet := make(map[string]bool, len(queryWords))
	for _, word := range queryWords {
		querySet[word] = true
	}

	matched := 0
	for word := range querySet {
		if contentSet[word] {
			matched++
		}
	}

	return float64(matched) / float64(len(querySet))
}

// alphanumericTokens splits text into maximal runs of letters and
// digits, preserving the original casing.
func alphanumericTokens(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if isAlphanumeric(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
