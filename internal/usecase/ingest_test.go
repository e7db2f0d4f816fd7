package usecase

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/millianlmx/rag/internal/adapter/chunker"
	"github.com/millianlmx/rag/internal/adapter/embedding"
	"github.com/millianlmx/rag/internal/adapter/store"
	"github.com/millianlmx/rag/internal/domain"
)

func newTestIngest(t *testing.T, batchSize int) (*IngestUseCase, *store.MemoryStore) {
	t.Helper()
	st, err := store.NewMemoryStore(256)
	if err != nil {
		t.Fatal(err)
	}
	chk, err := chunker.NewWordChunker(200, 0)
	if err != nil {
		t.Fatal(err)
	}
	emb := embedding.NewMockEmbedder(256)
	return NewIngestUseCase(st, chk, emb, batchSize, 1, time.Millisecond), st
}

func TestIngestTextStoresChunks(t *testing.T) {
	ingest, st := newTestIngest(t, 64)

	words := make([]string, 450)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}

	result, err := ingest.IngestText("report.txt", "/docs/report.txt", strings.Join(words, " "))
	if err != nil {
		t.Fatal(err)
	}

	if result.ChunksCreated != 3 {
		t.Errorf("expected 3 chunks created, got %d", result.ChunksCreated)
	}
	if result.ChunksFailed != 0 {
		t.Errorf("expected no failed chunks, got %d", result.ChunksFailed)
	}

	doc, err := st.GetDocument(result.Doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name != "report.txt" {
		t.Errorf("unexpected document name: %q", doc.Name)
	}

	chunks, err := st.GetChunksByDocument(result.Doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 stored chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Ordinal != i {
			t.Errorf("chunk %d: expected ordinal %d, got %d", i, i, chunk.Ordinal)
		}
	}
}

func TestIngestEmptyTextStoresNothing(t *testing.T) {
	ingest, st := newTestIngest(t, 64)

	result, err := ingest.IngestText("empty.txt", "/docs/empty.txt", "   \n\t ")
	if err != nil {
		t.Fatal(err)
	}
	if result.ChunksCreated != 0 {
		t.Errorf("expected 0 chunks, got %d", result.ChunksCreated)
	}

	docs, err := st.ListDocuments()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no stored document for empty text, got %d", len(docs))
	}
}

// batchFailEmbedder fails any batch containing the marker text and
// otherwise delegates to the mock embedder.
type batchFailEmbedder struct {
	*embedding.MockEmbedder
	marker string
}

func (e *batchFailEmbedder) Embed(texts []string) ([][]float32, error) {
	for _, text := range texts {
		if strings.Contains(text, e.marker) {
			return nil, fmt.Errorf("%w: backend rejected batch", domain.ErrServiceUnavailable)
		}
	}
	return e.MockEmbedder.Embed(texts)
}

func TestIngestPartialFailureContinues(t *testing.T) {
	st, err := store.NewMemoryStore(256)
	if err != nil {
		t.Fatal(err)
	}
	chk, err := chunker.NewWordChunker(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	emb := &batchFailEmbedder{MockEmbedder: embedding.NewMockEmbedder(256), marker: "poison"}

	// Batch size 1 so exactly one chunk fails.
	ingest := NewIngestUseCase(st, chk, emb, 1, 2, time.Millisecond)

	var words []string
	for i := 0; i < 10; i++ {
		words = append(words, fmt.Sprintf("good%d", i))
	}
	words = append(words, "poison")
	for i := 0; i < 9; i++ {
		words = append(words, fmt.Sprintf("tail%d", i))
	}
	for i := 0; i < 10; i++ {
		words = append(words, fmt.Sprintf("more%d", i))
	}

	result, err := ingest.IngestText("mixed.txt", "/docs/mixed.txt", strings.Join(words, " "))
	if err != nil {
		t.Fatal(err)
	}

	if result.ChunksCreated != 2 {
		t.Errorf("expected 2 chunks created, got %d", result.ChunksCreated)
	}
	if result.ChunksFailed != 1 {
		t.Errorf("expected 1 failed chunk, got %d", result.ChunksFailed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 collected error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "chunk 1") {
		t.Errorf("expected error attributed to chunk 1, got %q", result.Errors[0])
	}

	// The surviving chunks are retrievable.
	count, _ := st.Count()
	if count != 2 {
		t.Errorf("expected 2 retrievable chunks, got %d", count)
	}
}
