package domain

import "errors"

// Sentinel errors for the ingestion and query pipelines. Wrap with
// fmt.Errorf("%w: ...") and match with errors.Is.
var (
	// ErrInvalidConfig marks a fatal configuration problem (bad chunk
	// sizes, dimensionality mismatch between store and embedder). Never
	// retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrServiceUnavailable marks an unreachable or timed-out backend.
	// Retried with bounded backoff before being surfaced.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrDimensionMismatch marks a vector whose length disagrees with the
	// store's configured dimensionality. Fatal, never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotFound marks a missing document or chunk. An empty query result
	// is not an error and does not use this.
	ErrNotFound = errors.New("not found")

	// ErrGenerationError marks a generation backend failure that survived
	// retries. Surfaced with the retrieved context still attached.
	ErrGenerationError = errors.New("generation service error")
)
