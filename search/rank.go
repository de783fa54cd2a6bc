package search

import "sort"

// rankResults orders results by final score descending with a stable
// sort, so equal scores keep their candidate-discovery order. Ties are
// deliberately not broken by recency or id; ranking stays
// deterministic given a deterministic candidate order. Ranks are
// 1-based and assigned by position.
func rankResults(results []*Result) []*Result {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score.Final > results[j].Score.Final
	})
	for i, r := range results {
		r.Rank = i + 1
	}
	return results
}

// paginate slices one page out of the full ranked set.
func paginate(results []*Result, p Pagination) []*Result {
	start := (p.Page - 1) * p.PageSize
	if start >= len(results) {
		return []*Result{}
	}
	end := start + p.PageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
