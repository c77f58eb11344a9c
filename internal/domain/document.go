package domain

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SourceDocument is a raw corpus entry as read from disk: a unique filename and its bytes.
type SourceDocument struct {
	Filename string
	Data     []byte
}

// Page is a single extracted page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Document is an extracted document. It is immutable once built by an Extractor.
type Document struct {
	Filename string
	Pages    []Page
}

// Text returns the full document text: page texts joined by a single newline.
func (d Document) Text() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// Chunk is a bounded text window derived from exactly one document.
// Start and End are character offsets into the document text.
type Chunk struct {
	Filename    string
	Index       int
	Text        string
	PageNumbers []int
	Start       int
	End         int
}

// ID returns the persisted record id of the chunk.
func (c Chunk) ID() string { return RecordID(c.Filename, c.Index) }

// RecordID builds the stable store id "<filename>_<chunk_index>".
func RecordID(filename string, chunkIndex int) string {
	return filename + "_" + strconv.Itoa(chunkIndex)
}

// RecordMetadata is the metadata stored alongside every record.
type RecordMetadata struct {
	Filename    string `json:"filename"`
	ChunkIndex  int    `json:"chunk_index"`
	PageNumbers string `json:"page_numbers"`
}

// IndexedRecord is a chunk with its embedding, ready for the vector store.
type IndexedRecord struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Embedding []float32      `json:"embedding"`
	Metadata  RecordMetadata `json:"metadata"`
}

// NewIndexedRecord builds the record for a chunk and its embedding.
func NewIndexedRecord(c Chunk, embedding []float32) IndexedRecord {
	return IndexedRecord{
		ID:        c.ID(),
		Text:      c.Text,
		Embedding: embedding,
		Metadata: RecordMetadata{
			Filename:    c.Filename,
			ChunkIndex:  c.Index,
			PageNumbers: EncodePageNumbers(c.PageNumbers),
		},
	}
}

// EncodePageNumbers joins page numbers with commas, e.g. "1,2".
func EncodePageNumbers(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// DecodePageNumbers parses the comma-joined form. Malformed entries are skipped.
func DecodePageNumbers(s string) []int {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// SearchResult is a per-query view of a stored record.
// Distance: lower is more similar. RerankScore: higher is more relevant.
type SearchResult struct {
	ID          string
	Text        string
	Filename    string
	ChunkIndex  int
	PageNumbers []int
	Distance    float64
	RerankScore float64
}

// FailureReason classifies why a document contributed no chunks.
type FailureReason string

const (
	ReasonExtractionFailed FailureReason = "EXTRACTION_FAILED"
	ReasonNoText           FailureReason = "NO_TEXT"
	ReasonTooShort         FailureReason = "TOO_SHORT"
)

// DocumentFailure records one document skipped during indexing.
// Err matches ErrExtraction, ErrNoText or ErrTooShort under errors.Is.
type DocumentFailure struct {
	Filename string
	Reason   FailureReason
	Detail   string
	Err      error
}

// IndexReport summarises a reindex run.
type IndexReport struct {
	DocumentsFound     int
	DocumentsProcessed int
	DocumentsFailed    int
	ChunksStored       int
	Failures           []DocumentFailure
}

// WriteFailures writes one "<filename>: <reason>" line per failure.
func (r *IndexReport) WriteFailures(w io.Writer) error {
	for _, f := range r.Failures {
		line := fmt.Sprintf("%s: %s", f.Filename, f.Reason)
		if f.Detail != "" {
			line += " (" + f.Detail + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// SearchTrace is a search hit as shown in verbose mode.
type SearchTrace struct {
	Filename string
	Distance float64
}

// RerankTrace is a reranked hit as shown in verbose mode.
type RerankTrace struct {
	Filename string
	Score    float64
	Preview  string
}

// Trace holds the intermediate pipeline results of a verbose query.
type Trace struct {
	SearchResults   []SearchTrace
	RerankedResults []RerankTrace
}

// QueryOutcome is the final answer of a query plus the optional trace.
type QueryOutcome struct {
	Answer string
	Trace  *Trace
}
