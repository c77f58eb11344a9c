package service

import (
	"fmt"
	"strings"

	"pdfsearch/internal/domain"
)

// Fixed answers returned without calling the generator.
const (
	NoRelevantInformation = "No relevant information found in the documents."
	GenerationDisabled    = "[Error: answer generation is not configured (set OPENAI_API_KEY or choose a local generator)]"
)

const systemPrompt = `You are a helpful assistant that answers questions based on provided document excerpts.

Rules:
1. Answer ONLY using information from the provided context
2. Cite the source filename for every statement (e.g., "According to Report.pdf, ...")
3. If the context doesn't contain enough information, say so
4. Be concise and direct`

const contextSeparator = "\n\n---\n\n"

// buildContext numbers the sources from 1 and separates them with a rule.
func buildContext(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, r.Filename, r.Text)
	}
	return strings.Join(parts, contextSeparator)
}

func buildUserPrompt(query string, results []domain.SearchResult) string {
	return fmt.Sprintf(`Context from documents:

%s

---

Question: %s

Please answer the question using only the information provided above. Cite the filename for each statement.`,
		buildContext(results), query)
}

// generationError renders a failed generation inline.
func generationError(err error) string {
	return fmt.Sprintf("[Error generating response: %v]", err)
}
