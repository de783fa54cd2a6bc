package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/storage"
)

// VectorIndex implements storage.VectorIndex on top of BadgerDB with a
// metadata-filtered brute-force scan. Suitable for personal-scale
// corpora; swap in a dedicated vector store behind the same interface
// when the corpus outgrows it.
type VectorIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a VectorIndex on top of an open backend.
func NewVectorIndex(backend *Backend) *VectorIndex {
	return &VectorIndex{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (v *VectorIndex) Close() error {
	return nil
}

// Store upserts a vector record under the given id.
func (v *VectorIndex) Store(ctx context.Context, id string, vector []float32, meta core.VectorMetadata) error {
	rec := &core.IndexedVector{
		VectorId: id,
		Vector:   vector,
		Meta:     meta,
	}
	return v.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVectorKey(id), storage.MarshalIndexedVector(rec)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Search scans all vector records of the user, scores them by dot
// product and returns the topK matches ordered by score descending.
// When entityType is non-empty only entity vectors of that type match.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, topK int, userID, entityType string) ([]core.VectorMatch, error) {
	var matches []core.VectorMatch

	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var rec *core.IndexedVector
			err := iter.Item().Value(func(val []byte) error {
				var err error
				rec, err = storage.UnmarshalIndexedVector(val)
				return err
			})
			if err != nil {
				return err
			}
			if rec == nil || len(rec.Vector) == 0 {
				continue
			}

			if userID != "" && rec.Meta.UserId != userID {
				continue
			}
			if entityType != "" && rec.Meta.EntityType != entityType {
				continue
			}

			matches = append(matches, core.VectorMatch{
				VectorId: rec.VectorId,
				Score:    dotProduct(vector, rec.Vector),
				Meta:     rec.Meta,
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by score descending
	slices.SortStableFunc(matches, func(a, b core.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// Delete removes the vector record. Missing ids are not an error.
func (v *VectorIndex) Delete(ctx context.Context, id string) error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeVectorKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
