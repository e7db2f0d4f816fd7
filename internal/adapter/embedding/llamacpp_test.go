package embedding

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/millianlmx/rag/internal/domain"
)

func newTestServer(t *testing.T, dimension int, handler func(req embeddingRequest) any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		resp := handler(req)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func echoVectors(dimension int) func(req embeddingRequest) any {
	return func(req embeddingRequest) any {
		data := make([]embeddingData, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dimension)
			vec[0] = float32(len(req.Input[i]))
			// Answer in reverse order to exercise index-based reassembly.
			data[len(req.Input)-1-i] = embeddingData{Embedding: vec, Index: i}
		}
		return embeddingResponse{Data: data}
	}
}

func TestClientEmbedPreservesOrder(t *testing.T) {
	srv := newTestServer(t, 4, echoVectors(4))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Dimension: 4})
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := c.Embed([]string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatal(err)
	}

	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for i, want := range []float32{1, 2, 3} {
		if vectors[i][0] != want {
			t.Errorf("vector %d: expected marker %v, got %v", i, want, vectors[i][0])
		}
	}
}

func TestClientEmbedBatches(t *testing.T) {
	var batchSizes []int
	srv := newTestServer(t, 2, func(req embeddingRequest) any {
		batchSizes = append(batchSizes, len(req.Input))
		return echoVectors(2)(req)
	})
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Dimension: 2, BatchSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := c.Embed([]string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatal(err)
	}

	if len(vectors) != 5 {
		t.Fatalf("expected 5 vectors, got %d", len(vectors))
	}
	want := []int{2, 2, 1}
	if len(batchSizes) != len(want) {
		t.Fatalf("expected %d batches, got %v", len(want), batchSizes)
	}
	for i := range want {
		if batchSizes[i] != want[i] {
			t.Errorf("batch %d: expected size %d, got %d", i, want[i], batchSizes[i])
		}
	}
}

func TestClientTruncatesLongInput(t *testing.T) {
	var received string
	srv := newTestServer(t, 2, func(req embeddingRequest) any {
		received = req.Input[0]
		return echoVectors(2)(req)
	})
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Dimension: 2, MaxInputChars: 10})
	if err != nil {
		t.Fatal(err)
	}

	long := strings.Repeat("x", 50)
	if _, err := c.Embed([]string{long}); err != nil {
		t.Fatal(err)
	}

	if received != long[:10] {
		t.Errorf("expected head-truncated input of 10 chars, got %d chars", len(received))
	}
}

func TestClientDimensionMismatch(t *testing.T) {
	srv := newTestServer(t, 8, echoVectors(8))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Dimension: 4})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Embed([]string{"hello"})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestClientServerErrorIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "loading model", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Dimension: 4})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Embed([]string{"hello"})
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestClientUnreachableIsServiceUnavailable(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://127.0.0.1:1/v1", Dimension: 4})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Embed([]string{"hello"})
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestClientRejectsZeroDimension(t *testing.T) {
	_, err := NewClient(Config{Dimension: 0})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestMockEmbedderStableDimension(t *testing.T) {
	e := NewMockEmbedder(16)

	first, err := e.Embed([]string{"the quick brown fox"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Embed([]string{"the quick brown fox"})
	if err != nil {
		t.Fatal(err)
	}

	if len(first[0]) != len(second[0]) {
		t.Fatalf("dimension not stable: %d vs %d", len(first[0]), len(second[0]))
	}
	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("mock embedding not deterministic at index %d", i)
		}
	}
}

func TestMockEmbedderSharedVocabularyScoresHigher(t *testing.T) {
	e := NewMockEmbedder(64)

	vectors, err := e.Embed([]string{
		"gophers build concurrent pipelines",
		"gophers build concurrent programs",
		"medieval castle siege tactics",
	})
	if err != nil {
		t.Fatal(err)
	}

	dot := func(a, b []float32) float64 {
		var sum float64
		for i := range a {
			sum += float64(a[i]) * float64(b[i])
		}
		return sum
	}

	if dot(vectors[0], vectors[1]) <= dot(vectors[0], vectors[2]) {
		t.Error("expected overlapping vocabulary to score higher than disjoint text")
	}
}
