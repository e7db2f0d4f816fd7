package embedding

import (
	"hash/fnv"
	"math"
	"strings"
)

// MockEmbedder produces deterministic bag-of-words vectors by hashing each
// word into a bucket. Texts sharing vocabulary score high under cosine
// similarity, which is enough for tests and offline runs.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// Embed generates one vector per input text.
func (e *MockEmbedder) Embed(texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector := make([]float32, e.dimension)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(word))
			vector[h.Sum32()%uint32(e.dimension)]++
		}
		normalize(vector)
		vectors[i] = vector
	}
	return vectors, nil
}

func normalize(vector []float32) {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
}

// Dimension returns the embedding vector dimension.
func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *MockEmbedder) ModelName() string {
	return "mock"
}
