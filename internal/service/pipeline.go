package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pdfsearch/internal/domain"
	"pdfsearch/internal/embedding"
	"pdfsearch/internal/llm"
	"pdfsearch/internal/rerank"
	"pdfsearch/internal/summarizer"
	"pdfsearch/internal/vectorstore"
)

// Query defaults.
const (
	DefaultSearchTopK        = 20
	DefaultRerankTopK        = rerank.DefaultTopK
	DefaultDistanceThreshold = 1.0
	// traceSearchResults is the number of search hits kept in a verbose trace.
	traceSearchResults = 5
	previewChars       = 100
)

// PipelineConfig holds the query-time limits.
type PipelineConfig struct {
	SearchTopK        int
	RerankTopK        int
	DistanceThreshold float64
}

// DefaultPipelineConfig returns the standard limits.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		SearchTopK:        DefaultSearchTopK,
		RerankTopK:        DefaultRerankTopK,
		DistanceThreshold: DefaultDistanceThreshold,
	}
}

// Pipeline answers questions: search, rerank, then generate from the best chunks.
type Pipeline struct {
	embedder   embedding.Embedder
	store      vectorstore.Storage
	reranker   *rerank.Reranker
	generator  llm.Generator
	summarizer domain.Summarizer
	cfg        PipelineConfig
	logger     *slog.Logger
}

// NewPipeline wires the query pipeline. A nil generator disables answer generation;
// a nil summarizer selects the frequency summarizer for trace previews.
func NewPipeline(embedder embedding.Embedder, store vectorstore.Storage, reranker *rerank.Reranker,
	generator llm.Generator, summ domain.Summarizer, cfg PipelineConfig, opts ...Option) *Pipeline {
	def := DefaultPipelineConfig()
	if cfg.SearchTopK <= 0 {
		cfg.SearchTopK = def.SearchTopK
	}
	if cfg.RerankTopK <= 0 {
		cfg.RerankTopK = def.RerankTopK
	}
	if cfg.DistanceThreshold <= 0 {
		cfg.DistanceThreshold = def.DistanceThreshold
	}
	if summ == nil {
		summ = summarizer.NewFrequencySummarizer()
	}
	o := buildOptions(opts)
	return &Pipeline{
		embedder:   embedder,
		store:      store,
		reranker:   reranker,
		generator:  generator,
		summarizer: summ,
		cfg:        cfg,
		logger:     o.logger,
	}
}

// GenerationEnabled reports whether a generator is configured.
func (p *Pipeline) GenerationEnabled() bool { return p.generator != nil }

// Search returns up to topK stored chunks by ascending distance to the query.
// A non-positive topK uses the configured default.
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = p.cfg.SearchTopK
	}
	vec, err := embedding.EmbedOne(ctx, p.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := p.store.Query(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	p.logger.Debug("search complete", "results", len(results))
	return results, nil
}

// Rerank reorders candidates by cross-encoder score and keeps the configured top results.
func (p *Pipeline) Rerank(ctx context.Context, query string, candidates []domain.SearchResult) ([]domain.SearchResult, error) {
	return p.reranker.Rerank(ctx, query, candidates, p.cfg.RerankTopK)
}

// Answer produces the final text for reranked results. It never fails: gate misses,
// a missing generator and generation errors all become fixed or inline messages.
func (p *Pipeline) Answer(ctx context.Context, query string, reranked []domain.SearchResult) string {
	if len(reranked) == 0 {
		return NoRelevantInformation
	}
	best := reranked[0]
	if best.Distance > p.cfg.DistanceThreshold && best.RerankScore < 0 {
		p.logger.Debug("best result below relevance gate",
			"file", best.Filename, "distance", best.Distance, "score", best.RerankScore)
		return NoRelevantInformation
	}
	answer, err := p.Generate(ctx, query, reranked)
	if errors.Is(err, domain.ErrGenerationDisabled) {
		return GenerationDisabled
	}
	if err != nil {
		p.logger.Warn("generation failed", "generator", p.generator.Name(), "error", err,
			"timeout", errors.Is(err, domain.ErrGenerationTimeout))
		return generationError(err)
	}
	return answer
}

// Generate asks the generator to answer from the given results, without the relevance
// gate. It returns domain.ErrGenerationDisabled when no generator is configured.
func (p *Pipeline) Generate(ctx context.Context, query string, results []domain.SearchResult) (string, error) {
	if p.generator == nil {
		return "", domain.ErrGenerationDisabled
	}
	return p.generator.Complete(ctx, systemPrompt, buildUserPrompt(query, results))
}

// Query runs search, rerank and answer. Only store and embedding errors are returned;
// a failing cross-encoder falls back to retrieval order.
func (p *Pipeline) Query(ctx context.Context, query string, verbose bool) (*domain.QueryOutcome, error) {
	results, err := p.Search(ctx, query, p.cfg.SearchTopK)
	if err != nil {
		return nil, err
	}

	reranked, err := p.Rerank(ctx, query, results)
	if err != nil {
		p.logger.Warn("rerank failed, keeping retrieval order", "error", err)
		reranked = results[:min(len(results), p.cfg.RerankTopK)]
	}
	if len(reranked) > 0 {
		p.logger.Debug("rerank complete", "top", reranked[0].Filename, "score", reranked[0].RerankScore)
	}

	outcome := &domain.QueryOutcome{Answer: p.Answer(ctx, query, reranked)}
	if verbose {
		outcome.Trace = p.trace(results, reranked)
	}
	return outcome, nil
}

func (p *Pipeline) trace(results, reranked []domain.SearchResult) *domain.Trace {
	t := &domain.Trace{
		SearchResults:   make([]domain.SearchTrace, 0, min(len(results), traceSearchResults)),
		RerankedResults: make([]domain.RerankTrace, 0, len(reranked)),
	}
	for _, r := range results[:min(len(results), traceSearchResults)] {
		t.SearchResults = append(t.SearchResults, domain.SearchTrace{Filename: r.Filename, Distance: r.Distance})
	}
	for _, r := range reranked {
		t.RerankedResults = append(t.RerankedResults, domain.RerankTrace{
			Filename: r.Filename,
			Score:    r.RerankScore,
			Preview:  p.preview(r.Text),
		})
	}
	return t
}

func (p *Pipeline) preview(text string) string {
	lead, err := p.summarizer.Summarize(text, 1)
	if err != nil || lead == "" {
		lead = strings.Join(strings.Fields(text), " ")
	}
	return summarizer.Truncate(lead, previewChars)
}
