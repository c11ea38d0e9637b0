// File: internal/repository/session/interface.go
package session

import (
	"context"

	"github.com/smartbot-ai/smartbot/internal/domain"
)

// SessionRepository handles persisted chat session data.
type SessionRepository interface {
	// Save upserts the session record and replaces its stored messages
	// atomically. The recorded message count is a snapshot of the session
	// at call time.
	Save(ctx context.Context, session *domain.ChatSession, name, description string) error
	// Load reconstructs a saved session with messages ordered by timestamp
	// ascending. Returns ErrSessionNotFound when no record exists.
	Load(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	// ListAll returns saved session records ordered by updated_at descending.
	ListAll(ctx context.Context) ([]domain.SessionRecord, error)
	// Delete removes a session's messages and then its record. Returns
	// ErrSessionNotFound when no session record existed.
	Delete(ctx context.Context, sessionID string) error
	// Search finds messages containing the query substring
	// (case-insensitive), most recent first, joined with session names.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
	// Statistics reports store-wide counters.
	Statistics(ctx context.Context) (*domain.StoreStats, error)
}
