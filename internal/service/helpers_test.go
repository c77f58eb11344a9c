package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"pdfsearch/internal/domain"
	"pdfsearch/internal/vectorstore/memory"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingEmbedder returns a fixed one-hot style vector per text and records batch sizes.
type countingEmbedder struct {
	mu      sync.Mutex
	dim     int
	learned int
	batches []int
	err     error
}

func (e *countingEmbedder) Name() string { return "counting" }

func (e *countingEmbedder) Dimension() int {
	if e.dim == 0 {
		return e.learned
	}
	return e.dim
}

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.batches = append(e.batches, len(texts))
	size := e.dim
	if size == 0 {
		size = 3
		e.learned = size
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, size)
		v[len(t)%size] = 1
		out[i] = v
	}
	return out, nil
}

// recordingStore wraps the memory store and counts Recreate calls.
type recordingStore struct {
	*memory.Storage
	recreated []int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Storage: memory.NewStorage()}
}

func (s *recordingStore) Recreate(ctx context.Context, dim int) error {
	s.recreated = append(s.recreated, dim)
	return s.Storage.Recreate(ctx, dim)
}

// fixedChunker emits n chunks of distinct text per document.
type fixedChunker struct{ n int }

func (c fixedChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, c.n)
	for i := range out {
		out[i] = domain.Chunk{Filename: doc.Filename, Index: i, Text: doc.Filename + " chunk", PageNumbers: []int{1}}
	}
	return out, nil
}

// fakeGenerator records prompts and returns a canned answer or error.
type fakeGenerator struct {
	answer string
	err    error
	calls  int
	system string
	user   string
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Complete(_ context.Context, system, user string) (string, error) {
	g.calls++
	g.system, g.user = system, user
	return g.answer, g.err
}

// fixedScorer gives every document the same score, or fails.
type fixedScorer struct {
	score float64
	err   error
}

func (s fixedScorer) Name() string { return "fixed" }

func (s fixedScorer) Score(_ context.Context, _ string, docs []string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(docs))
	for i := range out {
		out[i] = s.score
	}
	return out, nil
}
