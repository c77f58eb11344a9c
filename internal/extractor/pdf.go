// Package extractor turns raw document bytes into per-page text.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdfsearch/internal/domain"
)

// PDF extracts text from PDF documents page by page.
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF { return &PDF{} }

// Extract reads every page of the document. A page without decodable text
// yields an empty string; only an unreadable document is an error.
func (e *PDF) Extract(data []byte) (fullText string, pages []domain.Page, err error) {
	if len(data) == 0 {
		return "", nil, &domain.ExtractionError{Err: errors.New("empty document")}
	}
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			fullText, pages = "", nil
			err = &domain.ExtractionError{Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, &domain.ExtractionError{Err: err}
	}

	n := reader.NumPage()
	pages = make([]domain.Page, 0, n)
	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		text := pageText(reader.Page(i))
		pages = append(pages, domain.Page{Number: i, Text: text})
		texts = append(texts, text)
	}
	return strings.Join(texts, "\n"), pages, nil
}

func pageText(p pdf.Page) string {
	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
