// File: internal/services/vector/interface.go
package vector

import "context"

// Logger interface for vector store operations.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Match is one scored result from a similarity query. Score is cosine
// similarity in [0,1]; higher is more similar.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Index handles vector data operations against one logical collection.
type Index interface {
	Upsert(ctx context.Context, id string, values []float32, metadata map[string]any) error
	QuerySimilar(ctx context.Context, embedding []float32, topK int) ([]Match, error)
	DeleteBySession(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int64, error)
	HealthCheck(ctx context.Context) error
}

// RetryProvider handles retry logic for vector store operations.
type RetryProvider interface {
	RetryWithTimeout(call func(ctx context.Context) error) error
}
