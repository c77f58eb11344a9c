package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pdfsearch/internal/domain"
	"pdfsearch/internal/embedding"
	"pdfsearch/internal/vectorstore"
)

// DefaultBatchSize bounds the number of chunks per embedding request and store write.
const DefaultBatchSize = 100

// DocumentExtractor turns a named file into an extracted document.
type DocumentExtractor interface {
	Extract(filename string, data []byte) (domain.Document, error)
}

// Indexer rebuilds the vector index from a corpus.
type Indexer struct {
	extractor DocumentExtractor
	chunker   domain.Chunker
	embedder  embedding.Embedder
	store     vectorstore.Storage
	batchSize int
	logger    *slog.Logger
}

// NewIndexer creates an indexer. A non-positive batchSize selects DefaultBatchSize.
func NewIndexer(extractor DocumentExtractor, chunker domain.Chunker, embedder embedding.Embedder,
	store vectorstore.Storage, batchSize int, opts ...Option) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	o := buildOptions(opts)
	return &Indexer{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		logger:    o.logger,
	}
}

// Reindex drops the existing collection and indexes every document of the corpus.
// Unusable documents are recorded in the report and skipped. Embedding and store
// errors abort the run.
func (ix *Indexer) Reindex(ctx context.Context, corpus []domain.SourceDocument) (*domain.IndexReport, error) {
	report := &domain.IndexReport{DocumentsFound: len(corpus)}
	ix.logger.Info("indexing corpus", "documents", len(corpus))

	var chunks []domain.Chunk
	seen := make(map[string]string)
	for _, src := range corpus {
		docChunks, failure := ix.prepare(src)
		if failure != nil {
			report.DocumentsFailed++
			report.Failures = append(report.Failures, *failure)
			ix.logger.Warn("skipping document",
				"file", failure.Filename, "reason", failure.Reason, "detail", failure.Detail)
			continue
		}
		for _, c := range docChunks {
			id := c.ID()
			if owner, dup := seen[id]; dup {
				return nil, fmt.Errorf("%w: %s (from %s and %s)", domain.ErrDuplicateID, id, owner, src.Filename)
			}
			seen[id] = src.Filename
		}
		report.DocumentsProcessed++
		chunks = append(chunks, docChunks...)
		ix.logger.Debug("chunked document", "file", src.Filename, "chunks", len(docChunks))
	}
	ix.logger.Info("chunking complete", "chunks", len(chunks), "failed", report.DocumentsFailed)

	if err := ix.write(ctx, chunks); err != nil {
		return nil, err
	}

	count, err := ix.store.Count(ctx)
	if err != nil {
		return nil, storeErr("count", err)
	}
	report.ChunksStored = count
	ix.logger.Info("index rebuilt", "stored", count, "processed", report.DocumentsProcessed)
	return report, nil
}

// prepare extracts and chunks one document, or describes why it cannot be indexed.
func (ix *Indexer) prepare(src domain.SourceDocument) ([]domain.Chunk, *domain.DocumentFailure) {
	fail := func(reason domain.FailureReason, err error, detail string) *domain.DocumentFailure {
		return &domain.DocumentFailure{Filename: src.Filename, Reason: reason, Detail: detail, Err: err}
	}

	doc, err := ix.extractor.Extract(src.Filename, src.Data)
	if err != nil {
		return nil, fail(domain.ReasonExtractionFailed, err, err.Error())
	}
	if strings.TrimSpace(doc.Text()) == "" {
		return nil, fail(domain.ReasonNoText, domain.ErrNoText, "")
	}
	chunks, err := ix.chunker.Chunk(doc)
	if err != nil {
		return nil, fail(domain.ReasonTooShort, fmt.Errorf("%w: %w", domain.ErrTooShort, err), err.Error())
	}
	if len(chunks) == 0 {
		return nil, fail(domain.ReasonTooShort, domain.ErrTooShort, "")
	}
	return chunks, nil
}

// write recreates the collection and stores the chunks batch by batch. The collection
// is created with the embedder's dimension, or with the size of the first vector
// when the embedder only learns it from its first response. An empty run still
// leaves an empty collection behind.
func (ix *Indexer) write(ctx context.Context, chunks []domain.Chunk) error {
	dim := ix.embedder.Dimension()
	created := false
	if dim > 0 {
		if err := ix.store.Recreate(ctx, dim); err != nil {
			return storeErr("recreate", err)
		}
		created = true
	}

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vecs, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if err := embedding.CheckCount(len(batch), len(vecs)); err != nil {
			return err
		}

		if !created {
			dim = len(vecs[0])
			if err := ix.store.Recreate(ctx, dim); err != nil {
				return storeErr("recreate", err)
			}
			created = true
		}

		records := make([]domain.IndexedRecord, len(batch))
		for i, c := range batch {
			records[i] = domain.NewIndexedRecord(c, vecs[i])
		}
		if err := ix.store.Upsert(ctx, records); err != nil {
			return storeErr("upsert", err)
		}
		ix.logger.Debug("stored batch", "from", start, "to", end, "total", len(chunks))
	}

	if !created {
		// nothing to embed, so ask the embedder once for its vector size
		vec, err := embedding.EmbedOne(ctx, ix.embedder, "dimension")
		if err != nil {
			return fmt.Errorf("learn dimension of %s: %w", ix.embedder.Name(), err)
		}
		if len(vec) == 0 {
			return fmt.Errorf("%w: embedder %s returned an empty vector",
				domain.ErrStoreUnavailable, ix.embedder.Name())
		}
		if err := ix.store.Recreate(ctx, len(vec)); err != nil {
			return storeErr("recreate", err)
		}
	}
	return nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, domain.ErrDimensionMismatch) {
		return fmt.Errorf("store %s: %w", op, err)
	}
	return fmt.Errorf("%w: store %s: %v", domain.ErrStoreUnavailable, op, err)
}
