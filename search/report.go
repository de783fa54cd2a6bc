package search

// IndexReport describes the outcome of one IndexThought call.
// Indexing is not transactional; the thought vector and each entity
// vector are written independently, so a failure can leave some
// vectors written and others not. The report makes that visible so the
// caller can decide on a compensating re-index.
type IndexReport struct {
	// Written lists the vector ids successfully stored.
	Written []string
	// Failed lists the vector ids whose store call failed.
	Failed []string
}

// Partial reports whether some, but not all, vectors were written.
func (r *IndexReport) Partial() bool {
	return len(r.Written) > 0 && len(r.Failed) > 0
}
