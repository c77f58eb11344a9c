package domain

// Extractor turns raw document bytes into text.
// fullText is the page texts joined by a single newline.
type Extractor interface {
	Extract(data []byte) (fullText string, pages []Page, err error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
