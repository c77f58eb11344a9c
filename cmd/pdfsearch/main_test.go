package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfsearch/internal/config"
	"pdfsearch/internal/domain"
	"pdfsearch/internal/pdfgen"
)

type stubQuerier struct {
	queries []string
	err     error
}

func (s *stubQuerier) Query(_ context.Context, q string, _ bool) (*domain.QueryOutcome, error) {
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.QueryOutcome{
		Answer: "answer to " + q,
		Trace: &domain.Trace{
			SearchResults:   []domain.SearchTrace{{Filename: "a.pdf", Distance: 0.25}},
			RerankedResults: []domain.RerankTrace{{Filename: "a.pdf", Score: 3.5, Preview: "Alpha."}},
		},
	}, nil
}

func TestREPLSkipsBlankLinesAndStopsOnQuit(t *testing.T) {
	q := &stubQuerier{}
	var out bytes.Buffer
	in := strings.NewReader("first question\n\n   \nsecond question\nQUIT\nnever asked\n")

	require.NoError(t, repl(context.Background(), q, in, &out, false))
	assert.Equal(t, []string{"first question", "second question"}, q.queries)
	assert.Contains(t, out.String(), "answer to second question")
	assert.Contains(t, out.String(), "Sources used:\n  - a.pdf (score: 3.500)")
	assert.NotContains(t, out.String(), "distance")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestREPLKeepsGoingAfterErrors(t *testing.T) {
	q := &stubQuerier{err: errors.New("vector store unavailable")}
	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), q, strings.NewReader("one\ntwo\n"), &out, true))
	assert.Len(t, q.queries, 2)
	assert.Equal(t, 2, strings.Count(out.String(), "Error: vector store unavailable"))
}

func TestPrintOutcomeVerbose(t *testing.T) {
	q := &stubQuerier{}
	var out bytes.Buffer
	require.NoError(t, answerOnce(context.Background(), q, "what?", true, &out))
	assert.Contains(t, out.String(), "a.pdf (distance: 0.250)")
	assert.Contains(t, out.String(), "Alpha.")
}

func TestIsQuit(t *testing.T) {
	for _, w := range []string{"quit", "exit", "q", "Exit"} {
		assert.True(t, isQuit(w), w)
	}
	assert.False(t, isQuit("question"))
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "vector_store:\n  type: bolt\n  bolt:\n    path: " + filepath.Join(t.TempDir(), "index.db") +
		"\ngenerator:\n  type: none\nembedder:\n  dimension: 256\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestIngestThenQuery(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	_, err := pdfgen.Generate(dir, 2, 7)
	require.NoError(t, err)
	blank, err := pdfgen.RenderBlank(1)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Blank.pdf"), blank, 0o644))

	a := &app{cfg: testConfig(t), logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	failed := filepath.Join(t.TempDir(), "reports", "failed_files.txt")
	require.NoError(t, a.ingest(ctx, dir, failed))

	report, err := os.ReadFile(failed)
	require.NoError(t, err)
	assert.Equal(t, "Blank.pdf: NO_TEXT\n", string(report))

	c, err := openComponents(a.cfg)
	require.NoError(t, err)
	defer c.Close()
	count, err := c.store.Count(ctx)
	require.NoError(t, err)
	assert.Positive(t, count)

	p, err := buildPipeline(a.cfg, c, a.logger)
	require.NoError(t, err)
	assert.False(t, p.GenerationEnabled())
	outcome, err := p.Query(ctx, "What is the remote work policy for employees?", true)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Trace.RerankedResults)
	assert.Equal(t, "Remote_Work_Policy.pdf", outcome.Trace.RerankedResults[0].Filename)
}

func TestIngestRemovesStaleFailureReport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	_, err := pdfgen.Generate(dir, 1, 3)
	require.NoError(t, err)
	blank, err := pdfgen.RenderBlank(1)
	require.NoError(t, err)
	blankPath := filepath.Join(dir, "Blank.pdf")
	require.NoError(t, os.WriteFile(blankPath, blank, 0o644))

	a := &app{cfg: testConfig(t), logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	failed := filepath.Join(t.TempDir(), "failed_files.txt")
	require.NoError(t, a.ingest(ctx, dir, failed))
	assert.FileExists(t, failed)

	require.NoError(t, os.Remove(blankPath))
	require.NoError(t, a.ingest(ctx, dir, failed))
	assert.NoFileExists(t, failed)

	// no report on disk and nothing failed
	require.NoError(t, a.ingest(ctx, dir, failed))
	assert.NoFileExists(t, failed)
}

func TestBuildGenerator(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(t)

	gen, err := buildGenerator(cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, gen)

	cfg.Generator.Type = "openai"
	cfg.Generator.OpenAI = &config.OpenAIGeneratorConfig{BaseURL: "http://localhost", APIKeyEnv: "PDFSEARCH_TEST_KEY"}
	t.Setenv("PDFSEARCH_TEST_KEY", "")
	gen, err = buildGenerator(cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, gen)

	t.Setenv("PDFSEARCH_TEST_KEY", "sk-test")
	gen, err = buildGenerator(cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, gen)

	cfg.Generator.Type = "palm"
	_, err = buildGenerator(cfg, logger)
	assert.Error(t, err)
}

func TestUnknownComponents(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedder.Type = "word2vec"
	_, err := buildEmbedder(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.VectorStore.Type = "chroma"
	_, err = openStore(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Reranker.Type = "colbert"
	_, err = buildReranker(cfg)
	assert.Error(t, err)
}
