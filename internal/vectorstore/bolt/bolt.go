// Package bolt persists the vector index in a single bbolt file and searches it by brute force.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"pdfsearch/internal/domain"
	"pdfsearch/internal/vectorstore"
)

var (
	bucketRecords = []byte("records")
	bucketIDs     = []byte("ids")
	keyDimension  = []byte("dimension")
)

// Storage keeps one top-level bucket per collection holding the records,
// an id index and the collection dimension.
type Storage struct {
	db         *bbolt.DB
	collection []byte
}

// Open opens or creates the database file. The collection itself is only
// created by Recreate.
func Open(path, collection string) (*Storage, error) {
	if collection == "" {
		collection = vectorstore.DefaultCollection
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStoreUnavailable, path, err)
	}
	return &Storage{db: db, collection: []byte(collection)}, nil
}

// Recreate deletes the collection bucket if present and creates it empty.
func (s *Storage) Recreate(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(s.collection) != nil {
			if err := tx.DeleteBucket(s.collection); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(s.collection)
		if err != nil {
			return err
		}
		if _, err := b.CreateBucket(bucketRecords); err != nil {
			return err
		}
		if _, err := b.CreateBucket(bucketIDs); err != nil {
			return err
		}
		return b.Put(keyDimension, []byte(strconv.Itoa(dimension)))
	})
}

// Upsert writes all records in one transaction. Existing ids keep their position.
func (s *Storage) Upsert(_ context.Context, records []domain.IndexedRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, dim, err := s.collectionBucket(tx)
		if err != nil {
			return err
		}
		recs, ids := b.Bucket(bucketRecords), b.Bucket(bucketIDs)
		for _, r := range records {
			if err := vectorstore.CheckDimension(r.Embedding, dim); err != nil {
				return fmt.Errorf("record %s: %w", r.ID, err)
			}
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			var key []byte
			if existing := ids.Get([]byte(r.ID)); existing != nil {
				key = append(key, existing...)
			} else {
				seq, err := recs.NextSequence()
				if err != nil {
					return err
				}
				key = sequenceKey(seq)
				if err := ids.Put([]byte(r.ID), key); err != nil {
					return err
				}
			}
			if err := recs.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Query scans every record in insertion order and ranks them.
func (s *Storage) Query(_ context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	var records []domain.IndexedRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, dim, err := s.collectionBucket(tx)
		if err != nil {
			return err
		}
		if err := vectorstore.CheckDimension(vector, dim); err != nil {
			return err
		}
		return b.Bucket(bucketRecords).ForEach(func(_, v []byte) error {
			var r domain.IndexedRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			records = append(records, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return vectorstore.Nearest(records, vector, topK), nil
}

// Count reports the number of stored records.
func (s *Storage) Count(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, _, err := s.collectionBucket(tx)
		if err != nil {
			return err
		}
		n = b.Bucket(bucketRecords).Stats().KeyN
		return nil
	})
	return n, err
}

// Close releases the database file.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) collectionBucket(tx *bbolt.Tx) (*bbolt.Bucket, int, error) {
	b := tx.Bucket(s.collection)
	if b == nil {
		return nil, 0, fmt.Errorf("%w: collection %q not found, run ingest first", domain.ErrStoreUnavailable, s.collection)
	}
	dim, err := strconv.Atoi(string(b.Get(keyDimension)))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: collection %q has no dimension", domain.ErrStoreUnavailable, s.collection)
	}
	return b, dim, nil
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
