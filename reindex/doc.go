// Package reindex rebuilds the vector index for existing thoughts
// after an embedding model change.
//
// This package supports batch processing of thoughts, progress
// tracking, retry logic with exponential backoff, and vector
// normalization to keep dot-product scores comparable across models.
package reindex
