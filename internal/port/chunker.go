package port

import "github.com/millianlmx/rag/internal/domain"

// Chunker splits extracted document text into retrieval units.
type Chunker interface {
	// Chunk splits text into ordered chunks owned by docID. Empty or
	// whitespace-only text yields zero chunks and no error.
	Chunk(docID, text string) ([]domain.Chunk, error)
}
