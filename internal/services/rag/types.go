// File: internal/services/rag/types.go
package rag

import "context"

// Result sources.
const (
	SourceVectorSearch = "vector_search"
	SourceTextSearch   = "text_search"
)

// Logger defines the logging interface used by the RAG components.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ContextResult is one retrieved snippet of prior conversation. Source tells
// callers whether the score came from vector similarity (reliable) or from
// the substring fallback (approximate, fixed score).
type ContextResult struct {
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata"`
	RelevanceScore float64        `json:"relevance_score"`
	Source         string         `json:"source"`
}

// Retriever produces ranked context snippets for a query. Implementations
// degrade to an empty slice instead of failing.
type Retriever interface {
	Query(ctx context.Context, text string, maxResults int) []ContextResult
}
