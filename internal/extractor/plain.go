package extractor

import (
	"errors"
	"unicode/utf8"

	"pdfsearch/internal/domain"
)

// Plain treats the document as a single page of UTF-8 text.
type Plain struct{}

// NewPlain creates a plain-text extractor.
func NewPlain() *Plain { return &Plain{} }

// Extract returns the text as page 1.
func (e *Plain) Extract(data []byte) (string, []domain.Page, error) {
	if !utf8.Valid(data) {
		return "", nil, &domain.ExtractionError{Err: errors.New("invalid UTF-8")}
	}
	text := string(data)
	return text, []domain.Page{{Number: 1, Text: text}}, nil
}
