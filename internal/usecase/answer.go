package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/millianlmx/rag/internal/domain"
	"github.com/millianlmx/rag/internal/port"
	"github.com/millianlmx/rag/internal/retry"
)

// systemPrompt keeps generation grounded in retrieved evidence. When the
// user attaches a document to the question itself, it takes priority over
// knowledge base excerpts.
const systemPrompt = "You are a helpful assistant that answers questions using the supplied documents. " +
	"Prefer the content of a provided document when one is included in the question, " +
	"then the knowledge base excerpts. If neither contains the answer, say that the " +
	"documents do not cover it instead of guessing."

// noContextNotice is sent instead of excerpts when retrieval found nothing,
// so the model knows to answer without evidence rather than invent sources.
const noContextNotice = "No matching documents were found in the knowledge base."

// AnswerUseCase assembles a grounded prompt from retrieved chunks and calls
// the generation backend. It only consumes already-retrieved chunks; picking
// k and filtering is the retriever's job.
type AnswerUseCase struct {
	llm       port.LLM
	attempts  int
	baseDelay time.Duration
}

// NewAnswerUseCase creates a generation orchestrator.
func NewAnswerUseCase(llm port.LLM, attempts int, baseDelay time.Duration) *AnswerUseCase {
	return &AnswerUseCase{llm: llm, attempts: attempts, baseDelay: baseDelay}
}

// Answer generates a grounded answer for the question from the retrieved
// chunks and returns it with the deduplicated documents used as context.
// An empty result list still produces an answer; a backend failure after
// retries is reported as domain.ErrGenerationError.
func (u *AnswerUseCase) Answer(question string, results []domain.RetrievalResult) (string, []domain.Document, error) {
	prompt := BuildPrompt(question, results)

	var answer string
	err := retry.Do(u.attempts, u.baseDelay, func() error {
		var genErr error
		answer, genErr = u.llm.GenerateWithSystem(systemPrompt, prompt)
		return genErr
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrGenerationError, err)
	}

	return answer, Citations(results), nil
}

// BuildPrompt renders the user turn: retrieved excerpts with document
// attribution, then the question.
func BuildPrompt(question string, results []domain.RetrievalResult) string {
	var b strings.Builder
	b.WriteString("Knowledge base:\n")

	if len(results) == 0 {
		b.WriteString(noContextNotice)
		b.WriteString("\n")
	}
	for _, r := range results {
		fmt.Fprintf(&b, "Document: %s\n", r.Chunk.Text)
		fmt.Fprintf(&b, "Source: %s (chunk %d)\n", r.Document.Name, r.Chunk.Ordinal)
	}

	b.WriteString("\nQuery: ")
	b.WriteString(question)
	return b.String()
}

// Citations returns the unique documents backing the results, in result
// order.
func Citations(results []domain.RetrievalResult) []domain.Document {
	seen := make(map[string]bool)
	var docs []domain.Document
	for _, r := range results {
		if r.Document.ID == "" || seen[r.Document.ID] {
			continue
		}
		seen[r.Document.ID] = true
		docs = append(docs, r.Document)
	}
	return docs
}
