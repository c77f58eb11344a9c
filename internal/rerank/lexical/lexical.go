// Package lexical is a local cross-encoder that scores query/document pairs by term overlap.
package lexical

import (
	"context"
	"math"
	"regexp"
	"strings"
)

const (
	coverageWeight = 8.0
	phraseWeight   = 4.0
	ochiaiWeight   = 4.0
	// offset makes a document sharing no query terms score -offset.
	offset = 4.0
)

// Scorer combines query-term coverage, adjacent-term phrase matches and the
// Ochiai coefficient of the two token sets.
type Scorer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// New creates a lexical scorer.
func New() *Scorer {
	return &Scorer{
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this scorer.
func (s *Scorer) Name() string { return "lexical" }

// Score returns one score per document.
func (s *Scorer) Score(ctx context.Context, query string, docs []string) ([]float64, error) {
	q := s.terms(query)
	out := make([]float64, len(docs))
	for i, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = s.pair(q, s.terms(d))
	}
	return out, nil
}

func (s *Scorer) pair(query, doc []string) float64 {
	qset := toSet(query)
	dset := toSet(doc)
	if len(qset) == 0 || len(dset) == 0 {
		return -offset
	}

	inter := 0
	for t := range qset {
		if _, ok := dset[t]; ok {
			inter++
		}
	}
	coverage := float64(inter) / float64(len(qset))
	// Ochiai coefficient: |A∩B| / sqrt(|A||B|)
	ochiai := float64(inter) / math.Sqrt(float64(len(qset))*float64(len(dset)))

	phrase := 0.0
	if len(query) > 1 {
		bigrams := make(map[string]struct{}, len(doc))
		for i := 1; i < len(doc); i++ {
			bigrams[doc[i-1]+" "+doc[i]] = struct{}{}
		}
		hits := 0
		for i := 1; i < len(query); i++ {
			if _, ok := bigrams[query[i-1]+" "+query[i]]; ok {
				hits++
			}
		}
		phrase = float64(hits) / float64(len(query)-1)
	}

	return coverageWeight*coverage + phraseWeight*phrase + ochiaiWeight*ochiai - offset
}

func (s *Scorer) terms(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, stem(t))
	}
	return out
}

// stem folds the most common English plural forms.
func stem(t string) string {
	switch {
	case len(t) > 4 && strings.HasSuffix(t, "ies"):
		return t[:len(t)-3] + "y"
	case len(t) > 3 && strings.HasSuffix(t, "s") && !strings.HasSuffix(t, "ss"):
		return t[:len(t)-1]
	}
	return t
}

func toSet(tokens []string) map[string]struct{} {
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "how", "does", "do", "our", "we", "you", "your", "their", "tell", "me",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
