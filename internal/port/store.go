package port

import "github.com/millianlmx/rag/internal/domain"

// VectorStore persists documents, chunks and their embedding vectors, and
// answers nearest-neighbor queries. Implementations must be safe for
// concurrent use; concurrent ingestion and deletion of the same document
// is undefined and must be serialized by the caller.
type VectorStore interface {
	// PutDocument persists document metadata.
	PutDocument(doc domain.Document) error

	// GetDocument returns a document by ID, or an error wrapping
	// domain.ErrNotFound.
	GetDocument(id string) (domain.Document, error)

	// ListDocuments returns all documents ordered by ingestion time.
	ListDocuments() ([]domain.Document, error)

	// Upsert persists or replaces a chunk and its vector together. A chunk
	// becomes visible to Query only through Upsert, so every retrievable
	// chunk has a vector.
	Upsert(chunk domain.Chunk, vector []float32) error

	// Query returns the k most similar chunks to the query vector, score
	// descending, ties broken by ingestion order. docID optionally scopes
	// the search to one document; empty means all. k larger than the store
	// returns everything ranked.
	Query(vector []float32, k int, docID string) ([]domain.RetrievalResult, error)

	// GetChunksByDocument returns a document's chunks in ordinal order.
	GetChunksByDocument(docID string) ([]domain.Chunk, error)

	// Delete removes a document and all of its chunks and vectors.
	Delete(docID string) error

	// Count returns the number of stored chunks.
	Count() (int, error)

	Close() error
}
