package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pdfsearch/internal/domain"
)

// LoadCorpus reads every regular file in dir whose extension is in exts (case-insensitive),
// sorted by filename. Subdirectories are not descended.
func LoadCorpus(dir string, exts []string) ([]domain.SourceDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = struct{}{}
	}

	var docs []domain.SourceDocument
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if _, ok := allowed[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		docs = append(docs, domain.SourceDocument{Filename: name, Data: data})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}
