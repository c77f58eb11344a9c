package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfsearch/internal/chunker"
	"pdfsearch/internal/domain"
	"pdfsearch/internal/embedding/hashing"
	"pdfsearch/internal/extractor"
	"pdfsearch/internal/pdfgen"
	"pdfsearch/internal/rerank"
	"pdfsearch/internal/rerank/lexical"
	"pdfsearch/internal/vectorstore/memory"
)

// axisEmbedder maps known texts to fixed vectors and everything else to the first axis.
type axisEmbedder map[string][]float32

func (axisEmbedder) Name() string   { return "axis" }
func (axisEmbedder) Dimension() int { return 2 }

func (e axisEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e[t]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func seededStore(t *testing.T, records ...domain.IndexedRecord) *memory.Storage {
	t.Helper()
	store := memory.NewStorage()
	require.NoError(t, store.Recreate(context.Background(), 2))
	require.NoError(t, store.Upsert(context.Background(), records))
	return store
}

func record(filename string, idx int, text string, vec ...float32) domain.IndexedRecord {
	return domain.NewIndexedRecord(domain.Chunk{Filename: filename, Index: idx, Text: text, PageNumbers: []int{1}}, vec)
}

func TestQueryFindsRemoteWorkPolicy(t *testing.T) {
	ctx := context.Background()
	var corpus []domain.SourceDocument
	for _, spec := range pdfgen.Corpus(3, 42) {
		data, err := pdfgen.Render(spec.Title, spec.Paragraphs)
		require.NoError(t, err)
		corpus = append(corpus, domain.SourceDocument{Filename: spec.Filename, Data: data})
	}

	emb := hashing.NewEmbedder(0)
	store := memory.NewStorage()
	ix := NewIndexer(extractor.Default(), chunker.New(), emb, store, 0, WithLogger(quietLogger()))
	report, err := ix.Reindex(ctx, corpus)
	require.NoError(t, err)
	require.Equal(t, len(corpus), report.DocumentsProcessed)

	gen := &fakeGenerator{answer: "According to Remote_Work_Policy.pdf, ..."}
	p := NewPipeline(emb, store, rerank.New(lexical.New()), gen, nil, DefaultPipelineConfig(),
		WithLogger(quietLogger()))

	outcome, err := p.Query(ctx, "What is the remote work policy for employees?", true)
	require.NoError(t, err)
	require.NotNil(t, outcome.Trace)
	require.NotEmpty(t, outcome.Trace.RerankedResults)
	assert.LessOrEqual(t, len(outcome.Trace.RerankedResults), DefaultRerankTopK)
	assert.Equal(t, "Remote_Work_Policy.pdf", outcome.Trace.RerankedResults[0].Filename)

	assert.Equal(t, gen.answer, outcome.Answer)
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.user, "[Source 1: Remote_Work_Policy.pdf]")
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	p := NewPipeline(axisEmbedder{}, seededStore(t), rerank.New(lexical.New()), nil, nil, PipelineConfig{},
		WithLogger(quietLogger()))
	_, err := p.Search(context.Background(), "   ", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = p.Query(context.Background(), "", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchOrdersByDistance(t *testing.T) {
	store := seededStore(t,
		record("far.pdf", 0, "far", 0, 1),
		record("near.pdf", 0, "near", 1, 0),
		record("mid.pdf", 0, "mid", 1, 1),
	)
	p := NewPipeline(axisEmbedder{}, store, rerank.New(lexical.New()), nil, nil, PipelineConfig{},
		WithLogger(quietLogger()))

	results, err := p.Search(context.Background(), "question", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near.pdf", results[0].Filename)
	assert.Equal(t, "mid.pdf", results[1].Filename)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
}

func TestSearchStoreUnavailable(t *testing.T) {
	p := NewPipeline(axisEmbedder{}, memory.NewStorage(), rerank.New(lexical.New()), nil, nil, PipelineConfig{},
		WithLogger(quietLogger()))
	_, err := p.Query(context.Background(), "anything", false)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestAnswerGate(t *testing.T) {
	tests := []struct {
		name     string
		best     domain.SearchResult
		wantCall bool
	}{
		{name: "far and negative", best: domain.SearchResult{Distance: 1.5, RerankScore: -2}},
		{name: "far but positive", best: domain.SearchResult{Distance: 1.5, RerankScore: 0.5}, wantCall: true},
		{name: "close but negative", best: domain.SearchResult{Distance: 0.4, RerankScore: -3}, wantCall: true},
		{name: "exactly at threshold", best: domain.SearchResult{Distance: 1.0, RerankScore: -1}, wantCall: true},
		{name: "zero score", best: domain.SearchResult{Distance: 1.8, RerankScore: 0}, wantCall: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{answer: "answer"}
			p := NewPipeline(axisEmbedder{}, memory.NewStorage(), rerank.New(lexical.New()), gen, nil,
				PipelineConfig{}, WithLogger(quietLogger()))
			tc.best.Filename = "doc.pdf"
			got := p.Answer(context.Background(), "q", []domain.SearchResult{tc.best})
			if tc.wantCall {
				assert.Equal(t, "answer", got)
				assert.Equal(t, 1, gen.calls)
				return
			}
			assert.Equal(t, NoRelevantInformation, got)
			assert.Zero(t, gen.calls)
		})
	}
}

func TestAnswerEmptyResults(t *testing.T) {
	gen := &fakeGenerator{answer: "answer"}
	p := NewPipeline(axisEmbedder{}, memory.NewStorage(), rerank.New(lexical.New()), gen, nil, PipelineConfig{},
		WithLogger(quietLogger()))
	assert.Equal(t, NoRelevantInformation, p.Answer(context.Background(), "q", nil))
	assert.Zero(t, gen.calls)
}

func TestAnswerGenerationDisabled(t *testing.T) {
	p := NewPipeline(axisEmbedder{}, memory.NewStorage(), rerank.New(lexical.New()), nil, nil, PipelineConfig{},
		WithLogger(quietLogger()))
	assert.False(t, p.GenerationEnabled())

	relevant := []domain.SearchResult{{Filename: "doc.pdf", Distance: 0.2, RerankScore: 3}}
	assert.Equal(t, GenerationDisabled, p.Answer(context.Background(), "q", relevant))

	_, err := p.Generate(context.Background(), "q", relevant)
	assert.ErrorIs(t, err, domain.ErrGenerationDisabled)

	// The relevance gate still wins when nothing is relevant.
	irrelevant := []domain.SearchResult{{Filename: "doc.pdf", Distance: 1.9, RerankScore: -4}}
	assert.Equal(t, NoRelevantInformation, p.Answer(context.Background(), "q", irrelevant))
}

func TestAnswerGenerationError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	p := NewPipeline(axisEmbedder{}, memory.NewStorage(), rerank.New(lexical.New()), gen, nil, PipelineConfig{},
		WithLogger(quietLogger()))
	got := p.Answer(context.Background(), "q", []domain.SearchResult{{Filename: "doc.pdf", Distance: 0.1, RerankScore: 1}})
	assert.Equal(t, "[Error generating response: rate limited]", got)
}

func TestAnswerPrompt(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	p := NewPipeline(axisEmbedder{}, memory.NewStorage(), rerank.New(lexical.New()), gen, nil, PipelineConfig{},
		WithLogger(quietLogger()))
	results := []domain.SearchResult{
		{Filename: "a.pdf", Text: "Alpha text.", Distance: 0.1, RerankScore: 2},
		{Filename: "b.pdf", Text: "Beta text.", Distance: 0.3, RerankScore: 1},
	}
	p.Answer(context.Background(), "What is alpha?", results)

	assert.Contains(t, gen.system, "Answer ONLY using information from the provided context")
	assert.Contains(t, gen.user, "[Source 1: a.pdf]\nAlpha text.\n\n---\n\n[Source 2: b.pdf]\nBeta text.")
	assert.Contains(t, gen.user, "Question: What is alpha?")
	assert.True(t, strings.HasPrefix(gen.user, "Context from documents:\n\n"))
}

func TestQueryFallsBackToRetrievalOrder(t *testing.T) {
	var records []domain.IndexedRecord
	for i := 0; i < 8; i++ {
		records = append(records, record(fmt.Sprintf("doc%d.pdf", i), 0, fmt.Sprintf("text %d", i), 1, float32(i)*0.1))
	}
	gen := &fakeGenerator{answer: "ok"}
	p := NewPipeline(axisEmbedder{}, seededStore(t, records...), rerank.New(fixedScorer{err: errors.New("model missing")}),
		gen, nil, PipelineConfig{}, WithLogger(quietLogger()))

	outcome, err := p.Query(context.Background(), "question", true)
	require.NoError(t, err)
	assert.Equal(t, "ok", outcome.Answer)
	require.Len(t, outcome.Trace.RerankedResults, DefaultRerankTopK)
	for i, r := range outcome.Trace.RerankedResults {
		assert.Equal(t, fmt.Sprintf("doc%d.pdf", i), r.Filename)
	}
}

func TestQueryTrace(t *testing.T) {
	var records []domain.IndexedRecord
	long := strings.Repeat("The benefits package covers dental care for every employee. ", 5)
	for i := 0; i < 12; i++ {
		records = append(records, record(fmt.Sprintf("doc%02d.pdf", i), 0, long, 1, float32(i)*0.05))
	}
	p := NewPipeline(axisEmbedder{}, seededStore(t, records...), rerank.New(fixedScorer{score: 2}),
		nil, nil, PipelineConfig{RerankTopK: 3}, WithLogger(quietLogger()))

	outcome, err := p.Query(context.Background(), "benefits", true)
	require.NoError(t, err)
	require.NotNil(t, outcome.Trace)
	assert.Equal(t, GenerationDisabled, outcome.Answer)
	assert.Len(t, outcome.Trace.SearchResults, 5)
	assert.Equal(t, "doc00.pdf", outcome.Trace.SearchResults[0].Filename)
	require.Len(t, outcome.Trace.RerankedResults, 3)
	for _, r := range outcome.Trace.RerankedResults {
		assert.Equal(t, 2.0, r.Score)
		assert.LessOrEqual(t, len([]rune(r.Preview)), 103)
		assert.True(t, strings.HasPrefix(r.Preview, "The benefits package"))
	}

	quiet, err := p.Query(context.Background(), "benefits", false)
	require.NoError(t, err)
	assert.Nil(t, quiet.Trace)
}

func TestQueryEmptyIndex(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	p := NewPipeline(axisEmbedder{}, seededStore(t), rerank.New(lexical.New()), gen, nil, PipelineConfig{},
		WithLogger(quietLogger()))
	outcome, err := p.Query(context.Background(), "anything", true)
	require.NoError(t, err)
	assert.Equal(t, NoRelevantInformation, outcome.Answer)
	assert.Empty(t, outcome.Trace.SearchResults)
	assert.Empty(t, outcome.Trace.RerankedResults)
	assert.Zero(t, gen.calls)
}
