package search

import "time"

// Weights controls how the four relevance signals combine into the
// final score. Defaults favor semantic similarity.
type Weights struct {
	Semantic   float64
	Keyword    float64
	Recency    float64
	Confidence float64
}

// DefaultWeights returns the standard signal weights.
func DefaultWeights() Weights {
	return Weights{
		Semantic:   0.5,
		Keyword:    0.25,
		Recency:    0.15,
		Confidence: 0.10,
	}
}

// calculateScore combines the four signals into one composite using a
// deterministic weighted sum. Each input is clamped to [0,1] first so
// the composite is a total order with no NaN or undefined results.
func calculateScore(w Weights, semantic, keyword, recency, confidence float64) Score {
	s := Score{
		Semantic:   clamp01(semantic),
		Keyword:    clamp01(keyword),
		Recency:    clamp01(recency),
		Confidence: clamp01(confidence),
	}
	s.Final = w.Semantic*s.Semantic +
		w.Keyword*s.Keyword +
		w.Recency*s.Recency +
		w.Confidence*s.Confidence
	return s
}

// recencyScore maps a thought's age to a step-function score.
func recencyScore(now, timestamp time.Time) float64 {
	age := now.Sub(timestamp)
	days := age.Hours() / 24

	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.8
	case days <= 90:
		return 0.6
	case days <= 365:
		return 0.4
	default:
		return 0.2
	}
}

// confidenceScore is the mean of the entries' confidence values, or
// 0.5 when the thought has none.
func confidenceScore(entryConfidences []float64) float64 {
	if len(entryConfidences) == 0 {
		return 0.5
	}
	var sum float64
	for _, c := range entryConfidences {
		sum += c
	}
	return sum / float64(len(entryConfidences))
}

func clamp01(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
