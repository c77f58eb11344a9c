package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"pdfsearch/internal/chunker"
	"pdfsearch/internal/config"
	"pdfsearch/internal/embedding"
	"pdfsearch/internal/embedding/hashing"
	ollamaembed "pdfsearch/internal/embedding/ollama"
	openaiembed "pdfsearch/internal/embedding/openai"
	"pdfsearch/internal/llm"
	ollamagen "pdfsearch/internal/llm/ollama"
	openaigen "pdfsearch/internal/llm/openai"
	"pdfsearch/internal/rerank"
	"pdfsearch/internal/rerank/lexical"
	"pdfsearch/internal/rerank/tei"
	"pdfsearch/internal/service"
	"pdfsearch/internal/vectorstore"
	"pdfsearch/internal/vectorstore/bolt"
	"pdfsearch/internal/vectorstore/memory"
	"pdfsearch/internal/vectorstore/qdrant"
)

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

func buildChunker(cfg *config.AppConfig) *chunker.WindowChunker {
	c := cfg.Chunker
	return chunker.New(
		chunker.WithChunkSize(c.ChunkSizeTokens),
		chunker.WithOverlap(c.OverlapTokens),
		chunker.WithMinChunk(c.MinChunkTokens),
		chunker.WithCharsPerToken(c.CharsPerToken),
	)
}

func buildEmbedder(cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "hashing", "":
		return hashing.NewEmbedder(cfg.Embedder.Dimension), nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		oc := cfg.Embedder.OpenAI
		client, err := openaiembed.NewClient(openaiembed.Config{
			BaseURL:    oc.BaseURL,
			APIKeyEnv:  oc.APIKeyEnv,
			Model:      oc.Model,
			Dimension:  cfg.Embedder.Dimension,
			Timeout:    secs(oc.TimeoutSecs),
			MaxRetries: oc.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	case "ollama":
		if cfg.Embedder.Ollama == nil {
			return nil, fmt.Errorf("ollama embedder config missing")
		}
		oc := cfg.Embedder.Ollama
		e, err := ollamaembed.New(ollamaembed.Config{
			Host:      oc.Host,
			Model:     oc.Model,
			Dimension: cfg.Embedder.Dimension,
			Timeout:   secs(oc.TimeoutSecs),
		})
		if err != nil {
			return nil, fmt.Errorf("ollama embedder init failed: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func openStore(cfg *config.AppConfig) (vectorstore.Storage, error) {
	vs := cfg.VectorStore
	switch vs.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "bolt", "":
		if vs.Bolt == nil {
			return nil, fmt.Errorf("bolt config missing")
		}
		return bolt.Open(vs.Bolt.Path, vs.Collection)
	case "qdrant":
		if vs.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.New(qdrant.Config{Host: vs.Qdrant.Host, Port: vs.Qdrant.Port, Collection: vs.Collection})
	default:
		return nil, fmt.Errorf("unknown vector store: %s", vs.Type)
	}
}

func buildReranker(cfg *config.AppConfig) (*rerank.Reranker, error) {
	switch cfg.Reranker.Type {
	case "lexical", "":
		return rerank.New(lexical.New()), nil
	case "tei":
		if cfg.Reranker.TEI == nil {
			return nil, fmt.Errorf("tei reranker config missing")
		}
		client, err := tei.New(tei.Config{URL: cfg.Reranker.TEI.URL, Timeout: secs(cfg.Reranker.TEI.TimeoutSecs)})
		if err != nil {
			return nil, err
		}
		return rerank.New(client), nil
	default:
		return nil, fmt.Errorf("unknown reranker: %s", cfg.Reranker.Type)
	}
}

// buildGenerator returns nil when generation is off, including an OpenAI
// generator whose key is not set.
func buildGenerator(cfg *config.AppConfig, logger *slog.Logger) (llm.Generator, error) {
	gc := cfg.Generator
	opts := llm.Options{Model: gc.Model, Temperature: gc.Temperature, MaxTokens: gc.MaxTokens}

	var gen llm.Generator
	switch gc.Type {
	case "none":
		return nil, nil
	case "openai", "":
		if gc.OpenAI == nil {
			return nil, fmt.Errorf("openai generator config missing")
		}
		key := os.Getenv(gc.OpenAI.APIKeyEnv)
		if key == "" {
			logger.Warn("no API key, answer generation disabled", "env", gc.OpenAI.APIKeyEnv)
			return nil, nil
		}
		g, err := openaigen.New(openaigen.Config{APIKey: key, BaseURL: gc.OpenAI.BaseURL, Options: opts})
		if err != nil {
			return nil, err
		}
		gen = g
	case "ollama":
		if gc.Ollama == nil {
			return nil, fmt.Errorf("ollama generator config missing")
		}
		g, err := ollamagen.New(ollamagen.Config{Host: gc.Ollama.Host, Options: opts})
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		return nil, fmt.Errorf("unknown generator: %s", gc.Type)
	}

	gen = llm.NewRetrying(gen, llm.RetryConfig{
		MaxRetries: gc.MaxRetries,
		RetryDelay: time.Duration(gc.RetryDelayMillis) * time.Millisecond,
		Timeout:    secs(gc.TimeoutSecs),
	})
	gen = llm.NewRateLimited(gen, gc.RequestsPerMinute, 1)
	logger.Info("answer generation enabled", "generator", gen.Name())
	return gen, nil
}

// components is everything a command needs. Close releases the store.
type components struct {
	embedder embedding.Embedder
	store    vectorstore.Storage
}

func (c *components) Close() error { return c.store.Close() }

func openComponents(cfg *config.AppConfig) (*components, error) {
	emb, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	return &components{embedder: emb, store: st}, nil
}

func buildPipeline(cfg *config.AppConfig, c *components, logger *slog.Logger) (*service.Pipeline, error) {
	rr, err := buildReranker(cfg)
	if err != nil {
		return nil, err
	}
	gen, err := buildGenerator(cfg, logger)
	if err != nil {
		return nil, err
	}
	return service.NewPipeline(c.embedder, c.store, rr, gen, nil, service.PipelineConfig{
		SearchTopK:        cfg.Query.SearchTopK,
		RerankTopK:        cfg.Query.RerankTopK,
		DistanceThreshold: cfg.Query.DistanceThreshold,
	}, service.WithLogger(logger)), nil
}
