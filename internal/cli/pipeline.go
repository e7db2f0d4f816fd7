package cli

import (
	"fmt"
	"time"

	"github.com/millianlmx/rag/config"
	"github.com/millianlmx/rag/internal/adapter/chunker"
	"github.com/millianlmx/rag/internal/adapter/embedding"
	"github.com/millianlmx/rag/internal/adapter/llm"
	"github.com/millianlmx/rag/internal/adapter/store"
	"github.com/millianlmx/rag/internal/usecase"
)

// openStore opens the vector store under the data directory, creating the
// .rag directory on first use.
func openStore() (*store.BoltStore, error) {
	dir := GetRootDir()
	if err := config.EnsureRAGDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create .rag directory: %w", err)
	}
	st, err := store.NewBoltStore(config.StorePath(dir), cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

func newEmbedder() (*embedding.Client, error) {
	return embedding.NewClient(embedding.Config{
		BaseURL:       cfg.Embedding.BaseURL,
		Model:         cfg.Embedding.Model,
		Dimension:     cfg.Embedding.Dimension,
		BatchSize:     cfg.Embedding.BatchSize,
		MaxInputChars: cfg.Embedding.MaxInputChars,
		APIKeyEnv:     cfg.Embedding.APIKeyEnv,
		Timeout:       time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
	})
}

func newLLM() *llm.Client {
	return llm.NewClient(llm.Config{
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		APIKeyEnv:   cfg.Generation.APIKeyEnv,
		Timeout:     time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
	})
}

func retryDelay() time.Duration {
	return time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond
}

func newIngestUseCase(st *store.BoltStore) (*usecase.IngestUseCase, error) {
	chk, err := chunker.NewWordChunker(cfg.Chunking.SizeWords, cfg.Chunking.OverlapWords)
	if err != nil {
		return nil, err
	}
	emb, err := newEmbedder()
	if err != nil {
		return nil, err
	}
	return usecase.NewIngestUseCase(st, chk, emb, cfg.Embedding.BatchSize, cfg.Retry.Attempts, retryDelay()), nil
}

func newAskUseCase(st *store.BoltStore) (*usecase.AskUseCase, error) {
	emb, err := newEmbedder()
	if err != nil {
		return nil, err
	}
	retriever := usecase.NewRetrieveUseCase(st, emb, cfg.Retrieve.MinScore, cfg.Retry.Attempts, retryDelay())
	answerer := usecase.NewAnswerUseCase(newLLM(), cfg.Retry.Attempts, retryDelay())
	return usecase.NewAskUseCase(st, retriever, answerer, cfg.Retrieve.TopK), nil
}
