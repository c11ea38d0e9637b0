// File: internal/services/ai/interface.go
package ai

import "context"

// EmbeddingProvider handles text embeddings.
type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CompletionProvider handles chat completions.
type CompletionProvider interface {
	GetCompletion(ctx context.Context, model, prompt string) (string, error)
}

// Provider combines embedding and completion capabilities.
type Provider interface {
	EmbeddingProvider
	CompletionProvider
}
