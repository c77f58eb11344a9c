// Package pdfgen produces labeled PDF documents for test corpora.
package pdfgen

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	titleSize = 16
	bodySize  = 11
)

// Render lays out a title and paragraphs on Letter pages and returns the PDF bytes.
// Text must be Latin-1; the core Helvetica font is used.
func Render(title string, paragraphs []string) ([]byte, error) {
	pdf := newDocument(title)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", titleSize)
	writeLines(pdf, title, 8)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", bodySize)
	for _, para := range paragraphs {
		writeLines(pdf, para, 6)
		pdf.Ln(3)
	}
	return output(pdf)
}

// RenderBlank returns a PDF with the given number of pages and no text.
func RenderBlank(pages int) ([]byte, error) {
	pdf := newDocument("")
	for i := 0; i < max(pages, 1); i++ {
		pdf.AddPage()
	}
	return output(pdf)
}

func newDocument(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCompression(false)
	pdf.SetMargins(25, 25, 25)
	pdf.SetAutoPageBreak(true, 25)
	if title != "" {
		pdf.SetTitle(title, false)
	}
	return pdf
}

// writeLines wraps text to the printable width. Every line keeps a trailing
// space so extracted text does not glue words across line breaks.
func writeLines(pdf *fpdf.Fpdf, text string, lineHeight float64) {
	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	for _, line := range pdf.SplitText(text, width-left-right) {
		pdf.CellFormat(0, lineHeight, line+" ", "", 1, "L", false, 0, "")
	}
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
