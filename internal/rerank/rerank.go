// Package rerank reorders retrieval candidates with a pairwise relevance model.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"pdfsearch/internal/domain"
)

// DefaultTopK is the number of results kept after reranking.
const DefaultTopK = 5

// CrossEncoder scores (query, document) pairs. Higher is more relevant; scores are
// unbounded and a negative score means the pair is judged irrelevant.
type CrossEncoder interface {
	Name() string
	Score(ctx context.Context, query string, docs []string) ([]float64, error)
}

// Reranker scores every candidate and keeps the best topK.
type Reranker struct {
	encoder CrossEncoder
}

// New creates a reranker backed by the given cross-encoder.
func New(encoder CrossEncoder) *Reranker {
	return &Reranker{encoder: encoder}
}

// Name reports the underlying cross-encoder.
func (r *Reranker) Name() string { return r.encoder.Name() }

// Rerank returns copies of candidates with RerankScore set, ordered by descending score.
// Equal scores keep their retrieval order. Candidates are never mutated.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.SearchResult, topK int) ([]domain.SearchResult, error) {
	if len(candidates) == 0 {
		return []domain.SearchResult{}, nil
	}
	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = c.Text
	}
	scores, err := r.encoder.Score(ctx, query, docs)
	if err != nil {
		return nil, fmt.Errorf("rerank with %s: %w", r.encoder.Name(), err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("rerank with %s: got %d scores for %d candidates", r.encoder.Name(), len(scores), len(candidates))
	}

	out := make([]domain.SearchResult, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].RerankScore = scores[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RerankScore > out[j].RerankScore })
	if topK >= 0 && topK < len(out) {
		out = out[:topK]
	}
	return out, nil
}
