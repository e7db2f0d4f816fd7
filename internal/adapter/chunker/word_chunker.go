package chunker

import (
	"fmt"
	"strings"

	"github.com/millianlmx/rag/internal/domain"
)

// WordChunker splits text into chunks of roughly size words, never inside a
// word. Words are whitespace-delimited tokens; chunks are rejoined with
// single spaces, so concatenating the output (minus overlap) reproduces the
// input word sequence exactly.
type WordChunker struct {
	size    int
	overlap int
}

// NewWordChunker creates a chunker producing size-word chunks with the given
// word overlap between consecutive chunks. overlap >= size is rejected.
func NewWordChunker(size, overlap int) (*WordChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must be non-negative, got %d", domain.ErrInvalidConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)", domain.ErrInvalidConfig, overlap, size)
	}
	return &WordChunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into chunks owned by docID. Ordinals are contiguous from
// zero and chunk IDs are derived from docID and ordinal, so identity is fixed
// before any embedding work happens.
func (c *WordChunker) Chunk(docID, text string) ([]domain.Chunk, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	step := c.size - c.overlap
	var chunks []domain.Chunk

	for start := 0; start < len(words); start += step {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}

		ordinal := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:      ChunkID(docID, ordinal),
			DocID:   docID,
			Ordinal: ordinal,
			Text:    strings.Join(words[start:end], " "),
		})

		if end == len(words) {
			break
		}
	}

	return chunks, nil
}

// ChunkID builds the canonical chunk identifier for a document and ordinal.
func ChunkID(docID string, ordinal int) string {
	return fmt.Sprintf("%s_%d", docID, ordinal)
}
