// Package embedding provides clients for OpenAI-compatible embedding
// endpoints, such as a local llama.cpp server running an embedding model.
package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/millianlmx/rag/internal/domain"
	"github.com/millianlmx/rag/internal/logger"
)

// Default configuration values for a local llama.cpp embedding server.
const (
	DefaultBaseURL       = "http://127.0.0.1:8081/v1"
	DefaultModel         = "Qwen3-Embedding-0.6B-GGUF"
	DefaultBatchSize     = 64
	DefaultMaxInputChars = 8000
	DefaultTimeout       = 60 * time.Second
)

// Config holds configuration for the embedding client.
type Config struct {
	BaseURL       string
	Model         string
	Dimension     int
	BatchSize     int
	MaxInputChars int
	APIKeyEnv     string // environment variable holding an optional API key
	Timeout       time.Duration
}

// Client calls an OpenAI-compatible /embeddings endpoint.
type Client struct {
	client        *http.Client
	baseURL       string
	model         string
	apiKey        string
	dimension     int
	batchSize     int
	maxInputChars int
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient creates an embedding client. Dimension must be positive; it is
// the contract the vector store is built against.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", domain.ErrInvalidConfig, cfg.Dimension)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultMaxInputChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var apiKey string
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	return &Client{
		client:        &http.Client{Timeout: cfg.Timeout},
		baseURL:       cfg.BaseURL,
		model:         cfg.Model,
		apiKey:        apiKey,
		dimension:     cfg.Dimension,
		batchSize:     cfg.BatchSize,
		maxInputChars: cfg.MaxInputChars,
	}, nil
}

// Embed generates one vector per input text, preserving input order.
// Inputs longer than the configured maximum are head-truncated before
// sending; truncation is logged, not an error.
func (c *Client) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := make([]string, end-i)
		for j, text := range texts[i:end] {
			batch[j] = c.truncate(text)
		}

		vectors, err := c.embedBatch(batch)
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}

	return all, nil
}

// truncate cuts text to the configured maximum input length, keeping the head.
func (c *Client) truncate(text string) string {
	if len(text) <= c.maxInputChars {
		return text
	}
	logger.Warn("embedding input truncated from %d to %d chars", len(text), c.maxInputChars)
	return text[:c.maxInputChars]
}

func (c *Client) embedBatch(texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Input: texts, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding backend unreachable: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read embedding response: %v", domain.ErrServiceUnavailable, err)
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: embedding backend returned status %d: %s", domain.ErrServiceUnavailable, resp.StatusCode, respBody)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding backend returned status %d: %s", resp.StatusCode, respBody)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("embedding backend error: %s", embResp.Error.Message)
	}
	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding backend returned %d vectors for %d inputs", len(embResp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding backend returned out-of-range index %d", data.Index)
		}
		if len(data.Embedding) != c.dimension {
			return nil, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, c.dimension, len(data.Embedding))
		}
		vectors[data.Index] = data.Embedding
	}

	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (c *Client) Dimension() int {
	return c.dimension
}

// ModelName returns the name of the embedding model.
func (c *Client) ModelName() string {
	return c.model
}
