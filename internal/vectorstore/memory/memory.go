// Package memory provides an in-process vector store using brute-force cosine distance.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pdfsearch/internal/domain"
	"pdfsearch/internal/vectorstore"
)

// Storage keeps records in insertion order. Upserting an existing id replaces it in place.
type Storage struct {
	mu        sync.RWMutex
	ready     bool
	dimension int
	records   []domain.IndexedRecord
	byID      map[string]int
}

// NewStorage returns an uninitialised store; call Recreate before use.
func NewStorage() *Storage { return &Storage{} }

// Recreate discards all records and fixes the vector dimension.
func (s *Storage) Recreate(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.dimension = dimension
	s.records = nil
	s.byID = make(map[string]int)
	return nil
}

// Upsert validates every vector before writing any of them.
func (s *Storage) Upsert(_ context.Context, records []domain.IndexedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return fmt.Errorf("%w: collection not created", domain.ErrStoreUnavailable)
	}
	for _, r := range records {
		if err := vectorstore.CheckDimension(r.Embedding, s.dimension); err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
	}
	for _, r := range records {
		if i, ok := s.byID[r.ID]; ok {
			s.records[i] = r
			continue
		}
		s.byID[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
	return nil
}

// Query ranks every record against the vector.
func (s *Storage) Query(_ context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil, fmt.Errorf("%w: collection not created", domain.ErrStoreUnavailable)
	}
	if err := vectorstore.CheckDimension(vector, s.dimension); err != nil {
		return nil, err
	}
	return vectorstore.Nearest(s.records, vector, topK), nil
}

// Count reports the number of stored records.
func (s *Storage) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return 0, fmt.Errorf("%w: collection not created", domain.ErrStoreUnavailable)
	}
	return len(s.records), nil
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }
