package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/millianlmx/rag/internal/domain"
)

// MemoryStore implements port.VectorStore entirely in memory. Used in tests
// and wherever a throwaway knowledge base is enough.
type MemoryStore struct {
	dimension int

	mu      sync.RWMutex
	docs    map[string]domain.Document
	chunks  map[string]domain.Chunk
	vectors map[string]vectorEntry
	nextSeq uint64
}

// NewMemoryStore creates an empty in-memory store with the given
// dimensionality.
func NewMemoryStore(dimension int) (*MemoryStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: store dimension must be positive, got %d", domain.ErrInvalidConfig, dimension)
	}
	return &MemoryStore{
		dimension: dimension,
		docs:      make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
		vectors:   make(map[string]vectorEntry),
	}, nil
}

func (s *MemoryStore) PutDocument(doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *MemoryStore) GetDocument(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return doc, nil
}

func (s *MemoryStore) ListDocuments() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].IngestedAt.Equal(docs[j].IngestedAt) {
			return docs[i].IngestedAt.Before(docs[j].IngestedAt)
		}
		return docs[i].Name < docs[j].Name
	})
	return docs, nil
}

func (s *MemoryStore) Upsert(chunk domain.Chunk, vector []float32) error {
	if len(vector) != s.dimension {
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, s.dimension, len(vector))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeq
	if existing, ok := s.vectors[chunk.ID]; ok {
		seq = existing.seq
	} else {
		s.nextSeq++
	}

	s.chunks[chunk.ID] = chunk
	s.vectors[chunk.ID] = vectorEntry{vector: vector, docID: chunk.DocID, seq: seq}
	return nil
}

func (s *MemoryStore) Query(vector []float32, k int, docID string) ([]domain.RetrievalResult, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, s.dimension, len(vector))
	}
	if k <= 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
		seq   uint64
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scores := make([]scored, 0, len(s.vectors))
	for id, entry := range s.vectors {
		if docID != "" && entry.docID != docID {
			continue
		}
		scores = append(scores, scored{
			id:    id,
			score: cosineSimilarity(vector, entry.vector),
			seq:   entry.seq,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].seq < scores[j].seq
	})
	if k < len(scores) {
		scores = scores[:k]
	}

	results := make([]domain.RetrievalResult, 0, len(scores))
	for _, sc := range scores {
		results = append(results, domain.RetrievalResult{
			Chunk:    s.chunks[sc.id],
			Document: s.docs[s.chunks[sc.id].DocID],
			Score:    sc.score,
		})
	}
	return results, nil
}

func (s *MemoryStore) GetChunksByDocument(docID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []domain.Chunk
	for _, chunk := range s.chunks {
		if chunk.DocID == docID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Ordinal < chunks[j].Ordinal })
	return chunks, nil
}

func (s *MemoryStore) Delete(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docID)
	for id, chunk := range s.chunks {
		if chunk.DocID == docID {
			delete(s.chunks, id)
			delete(s.vectors, id)
		}
	}
	return nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
