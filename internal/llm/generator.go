// Package llm defines the answer-generation port and wrappers adding retries and rate limits.
package llm

import (
	"context"
	"fmt"
)

// Generator produces a completion for a system and user prompt.
type Generator interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options holds sampling parameters shared by the adapters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// DefaultOptions matches the answer settings of the CLI.
func DefaultOptions() Options {
	return Options{Model: "gpt-4o-mini", Temperature: 0.3, MaxTokens: 500}
}

// StatusError is returned by HTTP adapters for non-2xx responses.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Code, e.Body)
}
