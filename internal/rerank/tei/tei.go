// Package tei calls a text-embeddings-inference style /rerank endpoint serving a cross-encoder.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config configures the rerank endpoint.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client scores pairs remotely. Raw logits are requested so irrelevant pairs score negative.
type Client struct {
	url    string
	client *http.Client
}

// New creates a client for the server at cfg.URL.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("rerank url is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:    strings.TrimSuffix(cfg.URL, "/"),
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the identifier of this cross-encoder.
func (c *Client) Name() string { return "tei" }

type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
}

type rankedText struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Score returns the scores in document order.
func (c *Client) Score(ctx context.Context, query string, docs []string) ([]float64, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(rerankRequest{Query: query, Texts: docs, RawScores: true})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/rerank", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tei rerank: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tei rerank failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var ranked []rankedText
	if err := json.NewDecoder(resp.Body).Decode(&ranked); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(ranked) != len(docs) {
		return nil, fmt.Errorf("tei rerank: got %d scores for %d texts", len(ranked), len(docs))
	}
	scores := make([]float64, len(docs))
	seen := make([]bool, len(docs))
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(docs) || seen[r.Index] {
			return nil, fmt.Errorf("tei rerank: invalid index %d", r.Index)
		}
		seen[r.Index] = true
		scores[r.Index] = r.Score
	}
	return scores, nil
}
