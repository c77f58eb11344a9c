package domain

import "errors"

var (
	// ErrExtraction indicates a structurally unreadable document.
	ErrExtraction = errors.New("extraction failed")

	// ErrNoText indicates a document that extracted to blank text.
	ErrNoText = errors.New("no text content")

	// ErrTooShort indicates a document whose text yields no viable chunk.
	ErrTooShort = errors.New("text too short")

	// ErrStoreUnavailable indicates a missing index or unreachable store backend.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a vector whose length differs from the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrDuplicateID indicates two records with the same id in one run.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrGenerationFailure indicates the LLM call failed.
	ErrGenerationFailure = errors.New("generation failed")

	// ErrGenerationTimeout indicates the LLM call timed out. It is retryable.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationDisabled indicates no generation capability is configured.
	ErrGenerationDisabled = errors.New("generation disabled")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// ExtractionError wraps the cause of an unreadable document.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Filename == "" {
		return "extract: " + e.Err.Error()
	}
	return "extract " + e.Filename + ": " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is reports ErrExtraction for every ExtractionError.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }
