package usecase

import (
	"testing"
	"time"

	"github.com/millianlmx/rag/internal/adapter/embedding"
	"github.com/millianlmx/rag/internal/adapter/store"
)

// countingEmbedder fails the test if the backend is called when it must not be.
type countingEmbedder struct {
	*embedding.MockEmbedder
	calls int
}

func (e *countingEmbedder) Embed(texts []string) ([][]float32, error) {
	e.calls++
	return e.MockEmbedder.Embed(texts)
}

func TestRetrieveEmptyStoreReturnsEmpty(t *testing.T) {
	st, err := store.NewMemoryStore(64)
	if err != nil {
		t.Fatal(err)
	}
	emb := &countingEmbedder{MockEmbedder: embedding.NewMockEmbedder(64)}
	retrieve := NewRetrieveUseCase(st, emb, 0, 1, time.Millisecond)

	results, err := retrieve.Retrieve("anything at all", 5, "")
	if err != nil {
		t.Fatalf("empty store must not be an error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
	if emb.calls != 0 {
		t.Errorf("expected no embedding call against an empty store, got %d", emb.calls)
	}
}

func TestRetrieveRanksBySimilarity(t *testing.T) {
	st, err := store.NewMemoryStore(256)
	if err != nil {
		t.Fatal(err)
	}
	emb := embedding.NewMockEmbedder(256)
	retrieve := NewRetrieveUseCase(st, emb, 0, 1, time.Millisecond)

	texts := []string{
		"sourdough starter flour hydration baking",
		"kubernetes pods scheduling etcd cluster",
		"violin concerto orchestra strings tempo",
	}
	for i, text := range texts {
		vecs, err := emb.Embed([]string{text})
		if err != nil {
			t.Fatal(err)
		}
		if err := st.Upsert(chunkFor("doc1", i, text), vecs[0]); err != nil {
			t.Fatal(err)
		}
	}

	results, err := retrieve.Retrieve("how does kubernetes scheduling work with etcd", 3, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "doc1_1" {
		t.Errorf("expected the kubernetes chunk first, got %s", results[0].Chunk.ID)
	}
}

func TestRetrieveMinScoreThreshold(t *testing.T) {
	st, err := store.NewMemoryStore(256)
	if err != nil {
		t.Fatal(err)
	}
	emb := embedding.NewMockEmbedder(256)

	vecs, err := emb.Embed([]string{"completely unrelated topic entirely"})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Upsert(chunkFor("doc1", 0, "completely unrelated topic entirely"), vecs[0]); err != nil {
		t.Fatal(err)
	}

	strict := NewRetrieveUseCase(st, emb, 0.9, 1, time.Millisecond)
	results, err := strict.Retrieve("quantum chromodynamics lattice simulation", 5, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected threshold to filter out weak match, got %d results", len(results))
	}

	lax := NewRetrieveUseCase(st, emb, 0, 1, time.Millisecond)
	results, err = lax.Retrieve("quantum chromodynamics lattice simulation", 5, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected unfiltered retrieval to return the chunk, got %d results", len(results))
	}
}
