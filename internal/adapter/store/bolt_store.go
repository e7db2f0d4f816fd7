// Package store provides vector store implementations: a bbolt-backed store
// that survives restarts and an in-memory store for tests.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/millianlmx/rag/internal/domain"
)

var (
	bucketDocs   = []byte("documents")
	bucketChunks = []byte("chunks")
	bucketMeta   = []byte("meta")
	keyDimension = []byte("dimension")
)

// BoltStore implements port.VectorStore on top of bbolt. Vectors are kept in
// an in-memory cache for brute-force cosine search; chunk text and document
// metadata live in the database. The store's dimensionality is fixed at
// creation and persisted, so reopening with a different embedding model
// fails fast instead of mixing incomparable vectors.
type BoltStore struct {
	db        *bbolt.DB
	dimension int

	mu      sync.RWMutex
	vectors map[string]vectorEntry
	nextSeq uint64
}

// vectorEntry is the searchable part of a chunk. seq records insertion order
// and breaks score ties deterministically.
type vectorEntry struct {
	vector []float32
	docID  string
	seq    uint64
}

type docRecord struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	IngestedAt int64  `json:"ingested_at"`
}

type chunkRecord struct {
	DocID   string    `json:"doc_id"`
	Ordinal int       `json:"ordinal"`
	Text    string    `json:"text"`
	Vector  []float32 `json:"vector"`
	Seq     uint64    `json:"seq"`
}

// NewBoltStore opens (or creates) a vector store at path with the given
// dimensionality. Opening an existing store with a different dimension
// returns domain.ErrInvalidConfig.
func NewBoltStore(path string, dimension int) (*BoltStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: store dimension must be positive, got %d", domain.ErrInvalidConfig, dimension)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketDocs, bucketChunks, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketMeta)
		if stored := meta.Get(keyDimension); stored != nil {
			storedDim, err := strconv.Atoi(string(stored))
			if err != nil {
				return fmt.Errorf("corrupt dimension record: %w", err)
			}
			if storedDim != dimension {
				return fmt.Errorf("%w: store was created with dimension %d, configured %d", domain.ErrInvalidConfig, storedDim, dimension)
			}
			return nil
		}
		return meta.Put(keyDimension, []byte(strconv.Itoa(dimension)))
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{
		db:        db,
		dimension: dimension,
		vectors:   make(map[string]vectorEntry),
	}
	if err := s.loadVectors(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}
	return s, nil
}

// loadVectors fills the in-memory cache from the chunks bucket.
func (s *BoltStore) loadVectors() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketChunks).ForEach(func(k, v []byte) error {
			var rec chunkRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt chunk record %s: %w", k, err)
			}
			s.vectors[string(k)] = vectorEntry{
				vector: rec.Vector,
				docID:  rec.DocID,
				seq:    rec.Seq,
			}
			if rec.Seq >= s.nextSeq {
				s.nextSeq = rec.Seq + 1
			}
			return nil
		})
	})
}

// PutDocument persists document metadata.
func (s *BoltStore) PutDocument(doc domain.Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(docRecord{
			Name:       doc.Name,
			Path:       doc.Path,
			IngestedAt: doc.IngestedAt.Unix(),
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketDocs).Put([]byte(doc.ID), data)
	})
}

// GetDocument returns a document by ID.
func (s *BoltStore) GetDocument(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
		}
		var rec docRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		doc = documentFromRecord(id, rec)
		return nil
	})
	return doc, err
}

// ListDocuments returns all documents ordered by ingestion time, then name.
func (s *BoltStore) ListDocuments() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var rec docRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			docs = append(docs, documentFromRecord(string(k), rec))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].IngestedAt.Equal(docs[j].IngestedAt) {
			return docs[i].IngestedAt.Before(docs[j].IngestedAt)
		}
		return docs[i].Name < docs[j].Name
	})
	return docs, nil
}

// Upsert persists or replaces a chunk and its vector. Replacing a chunk keeps
// its original insertion sequence so ingestion-order tie-breaking is stable.
func (s *BoltStore) Upsert(chunk domain.Chunk, vector []float32) error {
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

	err := s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(chunkRecord{
			DocID:   chunk.DocID,
			Ordinal: chunk.Ordinal,
			Text:    chunk.Text,
			Vector:  vector,
			Seq:     seq,
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketChunks).Put([]byte(chunk.ID), data)
	})
	if err != nil {
		return err
	}

	s.vectors[chunk.ID] = vectorEntry{vector: vector, docID: chunk.DocID, seq: seq}
	return nil
}

// Query returns the k most similar chunks to the query vector, optionally
// scoped to one document. k larger than the store returns everything ranked.
func (s *BoltStore) Query(vector []float32, k int, docID string) ([]domain.RetrievalResult, error) {
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
	s.mu.RUnlock()

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
	err := s.db.View(func(tx *bbolt.Tx) error {
		chunks := tx.Bucket(bucketChunks)
		docs := tx.Bucket(bucketDocs)

		for _, sc := range scores {
			data := chunks.Get([]byte(sc.id))
			if data == nil {
				continue
			}
			var rec chunkRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}

			result := domain.RetrievalResult{
				Chunk: domain.Chunk{
					ID:      sc.id,
					DocID:   rec.DocID,
					Ordinal: rec.Ordinal,
					Text:    rec.Text,
				},
				Score: sc.score,
			}

			if docData := docs.Get([]byte(rec.DocID)); docData != nil {
				var docRec docRecord
				if err := json.Unmarshal(docData, &docRec); err != nil {
					return err
				}
				result.Document = documentFromRecord(rec.DocID, docRec)
			}

			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetChunksByDocument returns a document's chunks in ordinal order.
func (s *BoltStore) GetChunksByDocument(docID string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	prefix := []byte(docID + "_")

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketChunks).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec chunkRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			chunks = append(chunks, domain.Chunk{
				ID:      string(k),
				DocID:   rec.DocID,
				Ordinal: rec.Ordinal,
				Text:    rec.Text,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Ordinal < chunks[j].Ordinal })
	return chunks, nil
}

// Delete removes a document and all of its chunks and vectors.
func (s *BoltStore) Delete(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketDocs).Delete([]byte(docID)); err != nil {
			return err
		}

		c := tx.Bucket(bucketChunks).Cursor()
		prefix := []byte(docID + "_")
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for id, entry := range s.vectors {
		if entry.docID == docID {
			delete(s.vectors, id)
		}
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *BoltStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors), nil
}

// Stats returns knowledge base statistics.
func (s *BoltStore) Stats() (domain.Stats, error) {
	docs, err := s.ListDocuments()
	if err != nil {
		return domain.Stats{}, err
	}
	count, _ := s.Count()
	return domain.Stats{TotalDocs: len(docs), TotalChunks: count}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func documentFromRecord(id string, rec docRecord) domain.Document {
	return domain.Document{
		ID:         id,
		Name:       rec.Name,
		Path:       rec.Path,
		IngestedAt: time.Unix(rec.IngestedAt, 0).UTC(),
	}
}

// cosineSimilarity computes the cosine similarity of two vectors in [-1, 1].
// Zero vectors score 0 against everything.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
