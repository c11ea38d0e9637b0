// File: internal/services/rag/config.go
package rag

import "fmt"

type Config struct {
	// Retrieval configuration
	RetrievalTopK  int // documents fed into the context block
	MinIndexLength int // trimmed content must exceed this to be indexed

	// Context configuration
	MaxContextChars int // cap on the rendered context block
	SnippetMaxChars int // cap per rendered match

	// Scoring
	TextSearchScore float64 // neutral score assigned to substring fallback hits
}

func (c *Config) Validate() error {
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("retrieval_top_k must be positive")
	}
	if c.RetrievalTopK > 20 {
		return fmt.Errorf("retrieval_top_k cannot exceed 20")
	}
	if c.MaxContextChars <= 0 {
		return fmt.Errorf("max_context_chars must be positive")
	}
	if c.SnippetMaxChars <= 0 {
		return fmt.Errorf("snippet_max_chars must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		RetrievalTopK:   3,
		MinIndexLength:  10,
		MaxContextChars: 1000,
		SnippetMaxChars: 200,
		TextSearchScore: 0.5,
	}
}
