// File: internal/services/vector/config.go
package vector

import (
	"errors"
	"time"
)

type Config struct {
	// Connection settings
	APIKey    string
	IndexHost string
	Namespace string

	// Operation settings
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Performance settings
	BatchSize int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		BatchSize:  100,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("vector store API key is required")
	}
	if c.IndexHost == "" {
		return errors.New("vector store index host is required")
	}
	if c.Namespace == "" {
		return errors.New("vector store namespace is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	return nil
}
