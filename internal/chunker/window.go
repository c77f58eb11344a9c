// Package chunker splits extracted document text into overlapping windows.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"pdfsearch/internal/domain"
)

// Default sizes in approximate tokens.
const (
	DefaultChunkSizeTokens = 512
	DefaultOverlapTokens   = 50
	DefaultMinChunkTokens  = 50
	DefaultCharsPerToken   = 4
)

// boundaryWindow is how far, in characters, the sentence search looks around a tentative cut.
const boundaryWindow = 100

// sentenceTerminators is ordered by preference.
var sentenceTerminators = []string{". ", ".\n", "? ", "!\n", "! ", "?\n"}

// WindowChunker cuts text into fixed-size character windows that snap to sentence ends.
type WindowChunker struct {
	chunkChars   int
	overlapChars int
	minChars     int
}

type settings struct {
	chunkTokens   int
	overlapTokens int
	minTokens     int
	charsPerToken int
}

// Option configures the chunker.
type Option func(*settings)

// WithChunkSize sets the target chunk size in tokens.
func WithChunkSize(tokens int) Option {
	return func(s *settings) {
		if tokens > 0 {
			s.chunkTokens = tokens
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in tokens.
func WithOverlap(tokens int) Option {
	return func(s *settings) {
		if tokens >= 0 {
			s.overlapTokens = tokens
		}
	}
}

// WithMinChunk sets the minimum viable chunk size in tokens.
func WithMinChunk(tokens int) Option {
	return func(s *settings) {
		if tokens > 0 {
			s.minTokens = tokens
		}
	}
}

// WithCharsPerToken sets the characters-per-token approximation.
func WithCharsPerToken(chars int) Option {
	return func(s *settings) {
		if chars > 0 {
			s.charsPerToken = chars
		}
	}
}

// New creates a chunker. Overlap that would not let the cursor advance is
// clamped to a quarter of the chunk size.
func New(opts ...Option) *WindowChunker {
	s := settings{
		chunkTokens:   DefaultChunkSizeTokens,
		overlapTokens: DefaultOverlapTokens,
		minTokens:     DefaultMinChunkTokens,
		charsPerToken: DefaultCharsPerToken,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.overlapTokens >= s.chunkTokens {
		s.overlapTokens = s.chunkTokens / 4
	}
	return &WindowChunker{
		chunkChars:   s.chunkTokens * s.charsPerToken,
		overlapChars: s.overlapTokens * s.charsPerToken,
		minChars:     s.minTokens * s.charsPerToken,
	}
}

// MinChars returns the minimum chunk length in characters.
func (c *WindowChunker) MinChars() int { return c.minChars }

// Chunk splits the document and attributes each chunk to the pages it spans.
func (c *WindowChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	chunks := c.Split(doc.Text(), doc.Filename)
	spans := pageSpans(doc.Pages)
	for i := range chunks {
		chunks[i].PageNumbers = pagesIn(spans, chunks[i].Start, chunks[i].End)
	}
	return chunks, nil
}

// Split cuts text into chunks. Offsets are in characters of the untrimmed text.
// Text shorter than the minimum chunk yields no chunks.
func (c *WindowChunker) Split(text, filename string) []domain.Chunk {
	runes := []rune(text)
	lo, hi := trimBounds(runes)
	body := runes[lo:hi]
	n := len(body)
	if n < c.minChars {
		return nil
	}

	var chunks []domain.Chunk
	start := 0
	for start < n {
		end := start + c.chunkChars
		if end < n {
			// a snap that leaves no room past the overlap would stall the cursor
			if snapped := c.snap(body, start, end); snapped-c.overlapChars > start {
				end = snapped
			}
		} else {
			end = n
		}

		piece := strings.TrimSpace(string(body[start:end]))
		if utf8.RuneCountInString(piece) >= c.minChars {
			chunks = append(chunks, domain.Chunk{
				Filename: filename,
				Index:    len(chunks),
				Text:     piece,
				Start:    lo + start,
				End:      lo + end,
			})
		}

		if end >= n {
			break
		}
		start = end - c.overlapChars
		if n-start < c.minChars {
			break
		}
	}
	return chunks
}

// snap returns the position just after the rightmost occurrence of the most
// preferred terminator within ±boundaryWindow of end, or end if none is found.
func (c *WindowChunker) snap(body []rune, start, end int) int {
	from := max(end-boundaryWindow, start)
	to := min(end+boundaryWindow, len(body))
	region := string(body[from:to])
	for _, sep := range sentenceTerminators {
		if i := strings.LastIndex(region, sep); i >= 0 {
			return from + utf8.RuneCountInString(region[:i]) + utf8.RuneCountInString(sep)
		}
	}
	return end
}

func trimBounds(runes []rune) (int, int) {
	lo, hi := 0, len(runes)
	for lo < hi && unicode.IsSpace(runes[lo]) {
		lo++
	}
	for hi > lo && unicode.IsSpace(runes[hi-1]) {
		hi--
	}
	return lo, hi
}

type pageSpan struct {
	number     int
	start, end int
}

// pageSpans lays pages out as they appear in Document.Text. Empty pages are dropped.
func pageSpans(pages []domain.Page) []pageSpan {
	spans := make([]pageSpan, 0, len(pages))
	offset := 0
	for _, p := range pages {
		length := utf8.RuneCountInString(p.Text)
		if length > 0 {
			spans = append(spans, pageSpan{number: p.Number, start: offset, end: offset + length})
		}
		offset += length + 1
	}
	return spans
}

func pagesIn(spans []pageSpan, start, end int) []int {
	var out []int
	for _, s := range spans {
		if s.start < end && start < s.end {
			out = append(out, s.number)
		}
	}
	return out
}
