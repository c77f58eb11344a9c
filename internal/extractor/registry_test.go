package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfsearch/internal/domain"
)

type failingExtractor struct{ err error }

func (f failingExtractor) Extract([]byte) (string, []domain.Page, error) {
	return "", nil, f.err
}

func TestDefaultRegistryExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf", ".txt"}, Default().Extensions())
}

func TestRegistryDispatchesByExtension(t *testing.T) {
	doc, err := Default().Extract("notes.TXT", []byte("plain notes"))
	require.NoError(t, err)
	assert.Equal(t, "notes.TXT", doc.Filename)
	assert.Equal(t, "plain notes", doc.Text())
}

func TestRegistryUnsupportedExtension(t *testing.T) {
	_, err := Default().Extract("slides.pptx", []byte("x"))
	require.Error(t, err)

	var extErr *domain.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "slides.pptx", extErr.Filename)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestRegistryFillsFilename(t *testing.T) {
	r := NewRegistry()
	r.Register("bin", failingExtractor{err: &domain.ExtractionError{Err: errors.New("boom")}})
	r.Register(".raw", failingExtractor{err: errors.New("plain failure")})
	assert.Equal(t, []string{".bin", ".raw"}, r.Extensions())

	_, err := r.Extract("a.bin", nil)
	var extErr *domain.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "a.bin", extErr.Filename)

	_, err = r.Extract("b.raw", nil)
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "b.raw", extErr.Filename)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "plain failure")
}

func TestRegistryMalformedPDF(t *testing.T) {
	doc, err := Default().Extract("broken.pdf", []byte("%PDF-1.4 truncated"))
	require.Error(t, err)
	assert.Empty(t, doc.Pages)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
