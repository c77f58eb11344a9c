// Package embedding defines the text-to-vector port shared by indexing and retrieval.
package embedding

import (
	"context"
	"math"
)

// Embedder converts free text into fixed-size vectors.
// The same embedder must be used for indexing and querying.
type Embedder interface {
	Name() string
	// Dimension reports the vector size, or 0 when it is only known after the first call.
	Dimension() int
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, errCount(1, len(vecs))
	}
	return vecs[0], nil
}

// Normalize scales v to unit length in place. Zero vectors are left untouched.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
