package tei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreMapsIndexes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rerank", r.URL.Path)
		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "remote work", req.Query)
		assert.Equal(t, []string{"a", "b", "c"}, req.Texts)
		assert.True(t, req.RawScores)
		_, _ = w.Write([]byte(`[{"index":2,"score":4.5},{"index":0,"score":1.25},{"index":1,"score":-3}]`))
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL + "/"})
	require.NoError(t, err)
	scores, err := c.Score(context.Background(), "remote work", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.25, -3, 4.5}, scores)
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusServiceUnavailable, `model loading`},
		{"short response", http.StatusOK, `[{"index":0,"score":1}]`},
		{"bad index", http.StatusOK, `[{"index":0,"score":1},{"index":5,"score":2}]`},
		{"duplicate index", http.StatusOK, `[{"index":0,"score":1},{"index":0,"score":2}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := New(Config{URL: srv.URL})
			require.NoError(t, err)
			_, err = c.Score(context.Background(), "q", []string{"a", "b"})
			assert.Error(t, err)
		})
	}
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
