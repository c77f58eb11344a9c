package vectorstore

import (
	"fmt"
	"math"
	"sort"

	"pdfsearch/internal/domain"
)

// Distance is the squared Euclidean distance between the unit-normalised vectors,
// 2·(1 − cosine). Zero vectors have cosine 0 with everything.
func Distance(a, b []float32) float64 {
	return 2 * (1 - Cosine(a, b))
}

// Cosine returns the cosine similarity of a and b.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / math.Sqrt(na*nb)
}

// ToResult converts a stored record into a search result at the given distance.
func ToResult(r domain.IndexedRecord, distance float64) domain.SearchResult {
	return domain.SearchResult{
		ID:          r.ID,
		Text:        r.Text,
		Filename:    r.Metadata.Filename,
		ChunkIndex:  r.Metadata.ChunkIndex,
		PageNumbers: domain.DecodePageNumbers(r.Metadata.PageNumbers),
		Distance:    distance,
	}
}

// Nearest ranks records by distance to query and keeps the topK closest.
// Ties keep the order of records.
func Nearest(records []domain.IndexedRecord, query []float32, topK int) []domain.SearchResult {
	results := make([]domain.SearchResult, len(records))
	for i, r := range records {
		results[i] = ToResult(r, Distance(r.Embedding, query))
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if topK >= 0 && topK < len(results) {
		results = results[:topK]
	}
	return results
}

// CheckDimension returns domain.ErrDimensionMismatch when v does not have dim entries.
func CheckDimension(v []float32, dim int) error {
	if len(v) != dim {
		return &DimensionError{Want: dim, Got: len(v)}
	}
	return nil
}

// DimensionError reports a vector of the wrong size.
type DimensionError struct {
	Want, Got int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// Unwrap makes errors.Is match domain.ErrDimensionMismatch.
func (e *DimensionError) Unwrap() error { return domain.ErrDimensionMismatch }
