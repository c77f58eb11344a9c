// Package ollama implements the Embedder port on a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"pdfsearch/internal/embedding"
)

// DefaultHost is used when neither the config nor OLLAMA_HOST names a server.
const DefaultHost = "http://localhost:11434"

// Config configures the Ollama embedder.
type Config struct {
	Host      string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// Embedder calls the Ollama /api/embed endpoint.
type Embedder struct {
	client    *api.Client
	model     string
	dimension int
}

// New creates an embedder for the given server.
func New(cfg Config) (*Embedder, error) {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "nomic-embed-text"
	}
	return &Embedder{
		client:    api.NewClient(base, &http.Client{Timeout: timeout}),
		model:     model,
		dimension: cfg.Dimension,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "ollama" }

// Dimension returns the configured size, or the size seen in the first response.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed sends the batch in a single request.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if err := embedding.CheckCount(len(texts), len(resp.Embeddings)); err != nil {
		return nil, err
	}
	if e.dimension == 0 {
		e.dimension = len(resp.Embeddings[0])
	}
	return resp.Embeddings, nil
}
