// Package config loads and validates the rag tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/millianlmx/rag/internal/domain"
)

// Config holds all configuration for the rag tool.
type Config struct {
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Retry      RetryConfig      `yaml:"retry"`
	Ingest     IngestConfig     `yaml:"ingest"`
}

// ChunkingConfig controls how document text is split.
type ChunkingConfig struct {
	SizeWords    int `yaml:"size_words"`
	OverlapWords int `yaml:"overlap_words"`
}

// EmbeddingConfig holds the embedding backend settings.
type EmbeddingConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	Dimension      int    `yaml:"dimension"`
	BatchSize      int    `yaml:"batch_size"`
	MaxInputChars  int    `yaml:"max_input_chars"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GenerationConfig holds the generation backend settings.
type GenerationConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// RetrieveConfig holds retrieval settings.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
	// MinScore filters results below this similarity (0 = disabled). The
	// absolute scale depends on the embedding model, so it is off by default.
	MinScore float64 `yaml:"min_score"`
}

// RetryConfig bounds backend retries.
type RetryConfig struct {
	Attempts    int `yaml:"attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
}

// IngestConfig controls directory ingestion.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// DefaultConfig returns the default configuration, tuned for local
// llama.cpp embedding and chat servers.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			SizeWords:    200,
			OverlapWords: 0,
		},
		Embedding: EmbeddingConfig{
			BaseURL:        "http://127.0.0.1:8081/v1",
			Model:          "Qwen3-Embedding-0.6B-GGUF",
			Dimension:      1024,
			BatchSize:      64,
			MaxInputChars:  8000,
			TimeoutSeconds: 60,
		},
		Generation: GenerationConfig{
			BaseURL:        "http://127.0.0.1:8080/v1",
			Model:          "gemma-3-4b-it-GGUF",
			MaxTokens:      1024,
			Temperature:    0.2,
			TimeoutSeconds: 120,
		},
		Retrieve: RetrieveConfig{
			TopK:     5,
			MinScore: 0,
		},
		Retry: RetryConfig{
			Attempts:    3,
			BaseDelayMs: 500,
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.*/**"},
		},
	}
}

// Load loads configuration from a YAML file, overlaying the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadFromDir loads configuration from a directory, looking for rag.yaml
// then .rag/config.yaml, falling back to defaults.
func LoadFromDir(dir string) (*Config, error) {
	for _, path := range []string{
		filepath.Join(dir, "rag.yaml"),
		filepath.Join(dir, ".rag", "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return DefaultConfig(), nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the pipeline cannot run with. All
// violations are fatal and wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Chunking.SizeWords <= 0 {
		return fmt.Errorf("%w: chunking.size_words must be positive, got %d", domain.ErrInvalidConfig, c.Chunking.SizeWords)
	}
	if c.Chunking.OverlapWords < 0 {
		return fmt.Errorf("%w: chunking.overlap_words must be non-negative, got %d", domain.ErrInvalidConfig, c.Chunking.OverlapWords)
	}
	if c.Chunking.OverlapWords >= c.Chunking.SizeWords {
		return fmt.Errorf("%w: chunking.overlap_words (%d) must be smaller than chunking.size_words (%d)",
			domain.ErrInvalidConfig, c.Chunking.OverlapWords, c.Chunking.SizeWords)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("%w: embedding.dimension must be positive, got %d", domain.ErrInvalidConfig, c.Embedding.Dimension)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("%w: retrieve.top_k must be positive, got %d", domain.ErrInvalidConfig, c.Retrieve.TopK)
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("%w: retry.attempts must be at least 1, got %d", domain.ErrInvalidConfig, c.Retry.Attempts)
	}
	return nil
}

// StorePath returns the path to the vector store database under dir.
func StorePath(dir string) string {
	return filepath.Join(dir, ".rag", "store.db")
}

// EnsureRAGDir ensures the .rag directory exists under dir.
func EnsureRAGDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".rag"), 0755)
}
