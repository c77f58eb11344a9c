package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfsearch/internal/llm"
)

func TestCompleteNonStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req["model"])
		assert.Equal(t, false, req["stream"])
		assert.Len(t, req["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":" Three days. "},"done":true}`))
	}))
	defer srv.Close()

	g, err := New(Config{Host: srv.URL, Options: llm.Options{Temperature: 0.3, MaxTokens: 100}})
	require.NoError(t, err)
	assert.Equal(t, "ollama/llama3", g.Name())

	out, err := g.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "Three days.", out)
}

func TestCompleteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g, err := New(Config{Host: srv.URL, Options: llm.Options{Model: "m"}})
	require.NoError(t, err)
	_, err = g.Complete(context.Background(), "s", "u")

	var status *llm.StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusServiceUnavailable, status.Code)
}
