package port

import "github.com/millianlmx/rag/internal/domain"

// Retriever embeds a query and returns the top-k most similar chunks.
type Retriever interface {
	// Retrieve returns results score descending, empty (not an error) when
	// the store holds no chunks. docID optionally scopes to one document.
	Retrieve(query string, k int, docID string) ([]domain.RetrievalResult, error)
}
