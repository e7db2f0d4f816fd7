package usecase

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/millianlmx/rag/internal/adapter/fs"
	"github.com/millianlmx/rag/internal/domain"
	"github.com/millianlmx/rag/internal/logger"
	"github.com/millianlmx/rag/internal/port"
	"github.com/millianlmx/rag/internal/retry"
)

// IngestUseCase turns raw document text into embedded, searchable chunks.
// Documents may be ingested concurrently; within one document, chunk
// identity and ordinals are fixed by the chunker before any embedding call
// is dispatched.
type IngestUseCase struct {
	store     port.VectorStore
	chunker   port.Chunker
	embedder  port.Embedder
	batchSize int
	attempts  int
	baseDelay time.Duration
}

// NewIngestUseCase creates an ingestion pipeline.
func NewIngestUseCase(store port.VectorStore, chunker port.Chunker, embedder port.Embedder, batchSize, attempts int, baseDelay time.Duration) *IngestUseCase {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &IngestUseCase{
		store:     store,
		chunker:   chunker,
		embedder:  embedder,
		batchSize: batchSize,
		attempts:  attempts,
		baseDelay: baseDelay,
	}
}

// IngestResult reports the outcome of ingesting one document. A document
// with failed chunks is still queryable through its successful ones.
type IngestResult struct {
	Doc           domain.Document
	ChunksCreated int
	ChunksFailed  int
	Errors        []string
}

// IngestText ingests a document given as raw text (the output of whatever
// extractor produced it). Empty text yields zero chunks and no stored
// document. Embedding failures are collected per chunk; one failed batch
// does not abort the rest of the document.
func (u *IngestUseCase) IngestText(name, path, text string) (*IngestResult, error) {
	doc := domain.Document{
		ID:         uuid.NewString(),
		Name:       name,
		Path:       path,
		IngestedAt: time.Now().UTC(),
	}

	chunks, err := u.chunker.Chunk(doc.ID, text)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Doc: doc}
	if len(chunks) == 0 {
		logger.Debug("document %s produced no chunks, skipping", name)
		return result, nil
	}

	if err := u.store.PutDocument(doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	logger.Debug("ingesting %s: %d chunks", name, len(chunks))

	for start := 0; start < len(chunks); start += u.batchSize {
		end := start + u.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		var vectors [][]float32
		err := retry.Do(u.attempts, u.baseDelay, func() error {
			var embedErr error
			vectors, embedErr = u.embedder.Embed(texts)
			return embedErr
		})
		if err != nil {
			for _, chunk := range batch {
				result.ChunksFailed++
				result.Errors = append(result.Errors, fmt.Sprintf("chunk %d: %v", chunk.Ordinal, err))
			}
			logger.Warn("embedding failed for %d chunks of %s: %v", len(batch), name, err)
			continue
		}
		if len(vectors) != len(batch) {
			return result, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		for i, chunk := range batch {
			if err := u.store.Upsert(chunk, vectors[i]); err != nil {
				return result, fmt.Errorf("failed to store chunk %s: %w", chunk.ID, err)
			}
			result.ChunksCreated++
		}
	}

	return result, nil
}

// IngestFile reads a text file and ingests it under its base name.
func (u *IngestUseCase) IngestFile(path string) (*IngestResult, error) {
	text, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return u.IngestText(filepath.Base(path), path, text)
}
