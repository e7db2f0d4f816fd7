// Package llm provides a client for OpenAI-compatible chat completion
// endpoints, such as a local llama.cpp server.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/millianlmx/rag/internal/domain"
)

// Default configuration values for a local llama.cpp chat server.
const (
	DefaultBaseURL     = "http://127.0.0.1:8080/v1"
	DefaultModel       = "gemma-3-4b-it-GGUF"
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.2
	DefaultTimeout     = 120 * time.Second
)

// Config holds configuration for the generation client.
type Config struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	APIKeyEnv   string // environment variable holding an optional API key
	Timeout     time.Duration
}

// Client calls an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	client      *http.Client
	baseURL     string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient creates a generation client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var apiKey string
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	return &Client{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		apiKey:      apiKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// GenerateWithSystem generates text from a system prompt and a user turn.
// Transport failures, timeouts and 5xx responses are reported as
// domain.ErrServiceUnavailable so callers can apply their retry policy.
func (c *Client) GenerateWithSystem(systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: generation backend unreachable: %v", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read chat response: %v", domain.ErrServiceUnavailable, err)
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: generation backend returned status %d: %s", domain.ErrServiceUnavailable, resp.StatusCode, respBody)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation backend returned status %d: %s", resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("generation backend error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("generation backend returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the model.
func (c *Client) ModelName() string {
	return c.model
}
