package usecase

import (
	"fmt"
	"time"

	"github.com/millianlmx/rag/internal/domain"
	"github.com/millianlmx/rag/internal/logger"
	"github.com/millianlmx/rag/internal/port"
	"github.com/millianlmx/rag/internal/retry"
)

// RetrieveUseCase embeds queries and fetches the most similar chunks.
// Deterministic given identical store state and query text.
type RetrieveUseCase struct {
	store     port.VectorStore
	embedder  port.Embedder
	minScore  float64
	attempts  int
	baseDelay time.Duration
}

// NewRetrieveUseCase creates a retriever. minScore filters results below the
// threshold; 0 disables filtering since the absolute score scale depends on
// the embedding model.
func NewRetrieveUseCase(store port.VectorStore, embedder port.Embedder, minScore float64, attempts int, baseDelay time.Duration) *RetrieveUseCase {
	return &RetrieveUseCase{
		store:     store,
		embedder:  embedder,
		minScore:  minScore,
		attempts:  attempts,
		baseDelay: baseDelay,
	}
}

// EmbedQuery embeds a single query text with bounded retry.
func (u *RetrieveUseCase) EmbedQuery(query string) ([]float32, error) {
	var vectors [][]float32
	err := retry.Do(u.attempts, u.baseDelay, func() error {
		var embedErr error
		vectors, embedErr = u.embedder.Embed([]string{query})
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}
	return vectors[0], nil
}

// Search runs a nearest-neighbor query against the store and applies the
// minimum-score threshold.
func (u *RetrieveUseCase) Search(vector []float32, k int, docID string) ([]domain.RetrievalResult, error) {
	results, err := u.store.Query(vector, k, docID)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	if u.minScore > 0 {
		filtered := results[:0]
		for _, r := range results {
			if r.Score >= u.minScore {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	logger.Debug("retrieved %d chunks (k=%d, scope=%q)", len(results), k, docID)
	return results, nil
}

// Retrieve embeds the query and returns the top-k most similar chunks,
// optionally scoped to one document. An empty store yields an empty result,
// not an error, without calling the embedding backend.
func (u *RetrieveUseCase) Retrieve(query string, k int, docID string) ([]domain.RetrievalResult, error) {
	count, err := u.store.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	vector, err := u.EmbedQuery(query)
	if err != nil {
		return nil, err
	}
	return u.Search(vector, k, docID)
}
