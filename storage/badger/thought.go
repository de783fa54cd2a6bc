package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/storage"
)

// ThoughtStore implements storage.ThoughtStore for BadgerDB.
type ThoughtStore struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ThoughtStore = (*ThoughtStore)(nil)

// NewThoughtStore creates a ThoughtStore on top of an open backend.
func NewThoughtStore(backend *Backend) (*ThoughtStore, error) {
	idSeq, err := backend.GetSequence(thoughtIDSeq)
	if err != nil {
		return nil, err
	}

	return &ThoughtStore{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (s *ThoughtStore) Close() error {
	return s.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (s *ThoughtStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.backend.WithTransaction(ctx, fn)
}

// AddThoughts adds one or more thoughts to storage.
func (s *ThoughtStore) AddThoughts(ctx context.Context, thoughts ...*core.Thought) ([]*core.Thought, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, thought := range thoughts {
			if thought.Id == 0 {
				nextID, err := s.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = s.idSeq.Next()
					if err != nil {
						return err
					}
				}
				thought.Id = core.ID(nextID)
			}

			if thought.InsertedAt.IsZero() {
				thought.InsertedAt = time.Now().UTC()
			}
			thought.UpdatedAt = thought.InsertedAt

			key := makeThoughtKey(thought.Id)
			value := storage.MarshalThought(thought)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			dateKey := makeUserDateKey(thought.UserId, thought.Timestamp, thought.Id)
			if err := tx.Set(dateKey, storage.MarshalID(thought.Id)); err != nil {
				return err
			}

			if err := s.bumpEntityValues(tx, thought, 1); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return thoughts, err
}

// UpdateThoughts updates existing thoughts.
func (s *ThoughtStore) UpdateThoughts(ctx context.Context, thoughts ...*core.Thought) ([]*core.Thought, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, thought := range thoughts {
			key := makeThoughtKey(thought.Id)

			old, err := s.readThought(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			thought.UpdatedAt = time.Now().UTC()

			value := storage.MarshalThought(thought)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Move the date index entry if timestamp or owner changed
			if !old.Timestamp.Equal(thought.Timestamp) || old.UserId != thought.UserId {
				oldDateKey := makeUserDateKey(old.UserId, old.Timestamp, old.Id)
				if err := tx.Delete(oldDateKey); err != nil {
					return err
				}
				newDateKey := makeUserDateKey(thought.UserId, thought.Timestamp, thought.Id)
				if err := tx.Set(newDateKey, storage.MarshalID(thought.Id)); err != nil {
					return err
				}
			}

			if !entriesEqual(old.Entries, thought.Entries) || old.UserId != thought.UserId {
				if err := s.bumpEntityValues(tx, old, -1); err != nil {
					return err
				}
				if err := s.bumpEntityValues(tx, thought, 1); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return thoughts, err
}

// DeleteThoughts removes thoughts by their IDs.
func (s *ThoughtStore) DeleteThoughts(ctx context.Context, ids ...core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeThoughtKey(id)

			thought, err := s.readThought(tx, key)
			if err != nil {
				return err
			}
			if thought == nil {
				return storage.ErrNotFound
			}

			dateKey := makeUserDateKey(thought.UserId, thought.Timestamp, thought.Id)
			if err := tx.Delete(dateKey); err != nil {
				return err
			}

			if err := s.bumpEntityValues(tx, thought, -1); err != nil {
				return err
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetThought retrieves a single thought by ID.
func (s *ThoughtStore) GetThought(ctx context.Context, id core.ID) (*core.Thought, error) {
	var result *core.Thought
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeThoughtKey(id)
		var err error
		result, err = s.readThought(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetThoughts retrieves multiple thoughts by their IDs.
func (s *ThoughtStore) GetThoughts(ctx context.Context, ids ...core.ID) ([]*core.Thought, error) {
	var result []*core.Thought
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeThoughtKey(id)
			thought, err := s.readThought(tx, key)
			if err != nil {
				return err
			}
			if thought != nil {
				result = append(result, thought)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindForSearch retrieves the subset of the given thoughts passing the
// filter. Missing IDs are skipped silently.
func (s *ThoughtStore) FindForSearch(ctx context.Context, ids []core.ID, filter storage.SearchFilter) ([]*core.Thought, error) {
	substring := strings.ToLower(filter.Substring)

	var result []*core.Thought
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			thought, err := s.readThought(tx, makeThoughtKey(id))
			if err != nil {
				return err
			}
			if thought == nil {
				continue
			}
			if filter.UserId != "" && thought.UserId != filter.UserId {
				continue
			}
			if filter.Start != nil && thought.Timestamp.Before(*filter.Start) {
				continue
			}
			if filter.End != nil && thought.Timestamp.After(*filter.End) {
				continue
			}
			if substring != "" && !strings.Contains(strings.ToLower(thought.Content), substring) {
				continue
			}
			result = append(result, thought)
		}
		return nil
	}, false)
	return result, err
}

// CountEntityValuesByPrefix returns entity values starting with prefix,
// ordered by occurrence count descending.
func (s *ThoughtStore) CountEntityValuesByPrefix(ctx context.Context, userID, prefix string, limit int) ([]storage.EntityValueCount, error) {
	var counts []storage.EntityValueCount
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntityValuePrefix(userID, prefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				count, display := unmarshalValueCount(val)
				if count > 0 {
					counts = append(counts, storage.EntityValueCount{
						Value: display,
						Count: int(count),
					})
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(counts, func(a, b storage.EntityValueCount) int {
		return b.Count - a.Count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// FindByContentSubstring retrieves up to limit thoughts of the user
// whose content contains the substring case-insensitively.
func (s *ThoughtStore) FindByContentSubstring(ctx context.Context, userID, substring string, limit int) ([]*core.Thought, error) {
	needle := strings.ToLower(substring)

	var results []*core.Thought
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeUserDatePrefix(userID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var thoughtID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				thoughtID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			thought, err := s.readThought(tx, makeThoughtKey(thoughtID))
			if err != nil {
				return err
			}
			if thought == nil {
				continue
			}
			if needle != "" && !strings.Contains(strings.ToLower(thought.Content), needle) {
				continue
			}
			results = append(results, thought)
		}
		return nil
	}, false)

	return results, err
}

// GetThoughtsByDateRange retrieves a user's thoughts within a time range.
func (s *ThoughtStore) GetThoughtsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*core.Thought, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Thought
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialUserDateKey(userID, start)
		endKey := makePartialUserDateKey(userID, end)
		userPrefix := makeUserDatePrefix(userID)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(userPrefix) || slices.Compare(key[:len(userPrefix)], userPrefix) != 0 {
				break
			}
			if slices.Compare(key, endKey) > 0 {
				break
			}

			var thoughtID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				thoughtID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			thought, err := s.readThought(tx, makeThoughtKey(thoughtID))
			if err != nil {
				return err
			}
			if thought != nil {
				results = append(results, thought)
			}
		}
		return nil
	}, false)

	return results, err
}

// Helper methods

// readThought reads a thought from the transaction.
func (s *ThoughtStore) readThought(tx *badger.Txn, key []byte) (*core.Thought, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var thought *core.Thought
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		thought, unmarshalErr = storage.UnmarshalThought(val)
		return unmarshalErr
	})
	return thought, err
}

// bumpEntityValues adjusts the suggestion index counts for all entity
// values of a thought by delta. Counts that reach zero are removed.
func (s *ThoughtStore) bumpEntityValues(tx *badger.Txn, thought *core.Thought, delta int64) error {
	for _, entry := range thought.Entries {
		if entry.EntityValue == "" {
			continue
		}
		key := makeEntityValueKey(thought.UserId, entry.EntityValue)

		var count uint64
		display := entry.EntityValue
		item, err := tx.Get(key)
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if err == nil {
			if err := item.Value(func(val []byte) error {
				var stored string
				count, stored = unmarshalValueCount(val)
				if stored != "" {
					display = stored
				}
				return nil
			}); err != nil {
				return err
			}
		}

		next := int64(count) + delta
		if next <= 0 {
			if err := tx.Delete(key); err != nil {
				return err
			}
			continue
		}
		if err := tx.Set(key, marshalValueCount(uint64(next), display)); err != nil {
			return err
		}
	}
	return nil
}

// entriesEqual compares two entry slices by identity and value.
func entriesEqual(a, b []core.SemanticEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Id != b[i].Id || a[i].EntityValue != b[i].EntityValue {
			return false
		}
	}
	return true
}
