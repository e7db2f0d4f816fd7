package domain

import "time"

// Document is a user-uploaded source ingested into the knowledge base.
// Documents are immutable once ingested; removal cascades to their chunks.
type Document struct {
	ID         string
	Name       string
	Path       string
	IngestedAt time.Time
}

// Chunk is a bounded, word-aligned segment of one document and the unit
// of retrieval. Ordinals are contiguous starting at zero within a document.
type Chunk struct {
	ID      string
	DocID   string
	Ordinal int
	Text    string
}

// RetrievalResult is one scored chunk returned by a similarity query,
// together with its owning document.
type RetrievalResult struct {
	Chunk    Chunk
	Document Document
	Score    float64
}

// QueryState tracks a question through the answer pipeline.
type QueryState string

const (
	StateReceived   QueryState = "received"
	StateEmbedding  QueryState = "embedding"
	StateRetrieving QueryState = "retrieving"
	StateGenerating QueryState = "generating"
	StateCompleted  QueryState = "completed"
	StateFailed     QueryState = "failed"
)

// QueryContext carries everything produced while answering one question.
// On failure the retrieved results are kept so callers can still show the
// evidence that was found.
type QueryContext struct {
	Question  string
	State     QueryState
	Results   []RetrievalResult
	Answer    string
	Citations []Document
	Err       error
}

// Stats summarizes the knowledge base contents.
type Stats struct {
	TotalDocs   int
	TotalChunks int
}
