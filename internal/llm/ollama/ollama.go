// Package ollama provides a Generator backed by a local Ollama chat model.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"pdfsearch/internal/llm"
)

var _ llm.Generator = (*Generator)(nil)

// Config configures the Ollama generator.
type Config struct {
	Host    string
	Options llm.Options
	Timeout time.Duration
}

// Generator sends a non-streaming chat request.
type Generator struct {
	client *api.Client
	opts   llm.Options
}

// New creates a generator for the server at cfg.Host.
func New(cfg Config) (*Generator, error) {
	host := cfg.Host
	if host == "" {
		host = "http://localhost:11434"
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if cfg.Options.Model == "" {
		cfg.Options.Model = "llama3"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		client: api.NewClient(base, &http.Client{Timeout: timeout}),
		opts:   cfg.Options,
	}, nil
}

// Name returns the provider and model.
func (g *Generator) Name() string { return "ollama/" + g.opts.Model }

// Complete collects the assistant message.
func (g *Generator) Complete(ctx context.Context, system, user string) (string, error) {
	stream := false
	options := map[string]interface{}{"temperature": g.opts.Temperature}
	if g.opts.MaxTokens > 0 {
		options["num_predict"] = g.opts.MaxTokens
	}
	req := &api.ChatRequest{
		Model: g.opts.Model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Options: options,
		Stream:  &stream,
	}

	var out strings.Builder
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var status api.StatusError
		if errors.As(err, &status) {
			return "", &llm.StatusError{Provider: "ollama", Code: status.StatusCode, Body: status.ErrorMessage}
		}
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
