// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	// Embedding configuration
	EmbeddingKey     string
	EmbeddingBaseURL string
	EmbeddingModel   string

	// LLM configuration
	LLMKey     string
	LLMBaseURL string

	// Performance configuration
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Model parameters
	Temperature float32
	TopP        float32
	MaxTokens   int
}

func (c *Config) Validate() error {
	if c.LLMKey == "" {
		return fmt.Errorf("AI_LLM_KEY is required")
	}
	if c.EmbeddingKey == "" {
		return fmt.Errorf("AI_EMBEDDING_KEY is required")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("EMBEDDING_MODEL_NAME is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:     60 * time.Second,
		MaxRetries:  3,
		RetryDelay:  2 * time.Second,
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   150,
	}
}
