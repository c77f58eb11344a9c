// Package vectorstore defines the persistent similarity index used by indexing and retrieval.
package vectorstore

import (
	"context"

	"pdfsearch/internal/domain"
)

// DefaultCollection is the collection name shared by the store implementations.
const DefaultCollection = "pdf_chunks"

// Storage persists indexed records and answers nearest-neighbour queries.
// Distances returned by Query are 2·(1 − cosine similarity), lower is closer.
type Storage interface {
	// Recreate drops any existing collection and creates an empty one for the dimension.
	Recreate(ctx context.Context, dimension int) error
	// Upsert inserts or replaces records by id.
	Upsert(ctx context.Context, records []domain.IndexedRecord) error
	// Query returns at most topK results ordered by ascending distance.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error)
	// Count reports the number of stored records.
	Count(ctx context.Context) (int, error)
	Close() error
}
