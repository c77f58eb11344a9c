package extractor

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"pdfsearch/internal/domain"
)

// Registry picks an extractor by file extension.
type Registry struct {
	byExt map[string]domain.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]domain.Extractor)}
}

// Default returns a registry handling .pdf and .txt files.
func Default() *Registry {
	r := NewRegistry()
	r.Register(".pdf", NewPDF())
	r.Register(".txt", NewPlain())
	return r
}

// Register binds an extension (with or without the leading dot) to an extractor.
func (r *Registry) Register(ext string, e domain.Extractor) {
	r.byExt[normalizeExt(ext)] = e
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extract dispatches on the filename extension and returns the extracted document.
func (r *Registry) Extract(filename string, data []byte) (domain.Document, error) {
	ext := normalizeExt(filepath.Ext(filename))
	e, ok := r.byExt[ext]
	if !ok {
		return domain.Document{}, &domain.ExtractionError{
			Filename: filename,
			Err:      fmt.Errorf("unsupported file type %q", ext),
		}
	}
	_, pages, err := e.Extract(data)
	if err != nil {
		if extErr, ok := err.(*domain.ExtractionError); ok && extErr.Filename == "" {
			extErr.Filename = filename
			return domain.Document{}, extErr
		}
		return domain.Document{}, &domain.ExtractionError{Filename: filename, Err: err}
	}
	return domain.Document{Filename: filename, Pages: pages}, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
