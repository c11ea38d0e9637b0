// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/smartbot-ai/smartbot/internal/domain"
	"github.com/smartbot-ai/smartbot/internal/repository/session"
	"github.com/smartbot-ai/smartbot/internal/services/model"
	"github.com/smartbot-ai/smartbot/internal/services/rag"
)

// Statistics aggregates counters across the store, the index and the
// live session for the stats endpoint.
type Statistics struct {
	Store     *domain.StoreStats `json:"store,omitempty"`
	Retrieval RetrievalStats     `json:"retrieval"`
	Session   SessionStats       `json:"session"`
}

// ChatService orchestrates one conversation turn end to end: context
// retrieval, prompt assembly, model dispatch and session bookkeeping. It
// is also the facade the HTTP layer calls for persistence and export.
type ChatService struct {
	sessions  *SessionManager
	repo      session.SessionRepository
	retrieval *RetrievalService
	prompts   *rag.PromptBuilder
	models    *model.Manager
	logger    Logger
}

func NewChatService(
	sessions *SessionManager,
	repo session.SessionRepository,
	retrieval *RetrievalService,
	prompts *rag.PromptBuilder,
	models *model.Manager,
	logger Logger,
) *ChatService {
	return &ChatService{
		sessions:  sessions,
		repo:      repo,
		retrieval: retrieval,
		prompts:   prompts,
		models:    models,
		logger:    logger,
	}
}

// HandleMessage runs one conversation turn and returns the bot reply.
// The reply is never empty: generation failures surface as fallback text,
// not errors.
func (s *ChatService) HandleMessage(ctx context.Context, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, errors.New("message content is required")
	}

	s.sessions.AddMessage(content, domain.MessageTypeUser, nil)

	prompt := s.prompts.BuildContextPrompt(ctx, content)
	contextText := ""
	if prompt != content {
		contextText = prompt
	}

	reply := s.models.GenerateResponse(ctx, content, contextText)

	botMsg := s.sessions.AddMessage(reply, domain.MessageTypeBot, map[string]any{
		"model":          s.models.Current(),
		"context_length": utf8.RuneCountInString(contextText),
	})

	s.logger.Info("Handled chat message", "model", s.models.Current(), "context_chars", utf8.RuneCountInString(contextText))
	return botMsg, nil
}

// SaveSession persists the live session under the given name and indexes
// it for retrieval. Indexing failure does not fail the save.
func (s *ChatService) SaveSession(ctx context.Context, name, description string) bool {
	current := s.sessions.Current()
	if err := s.repo.Save(ctx, current, name, description); err != nil {
		s.logger.Error("Saving session failed", "session_id", current.SessionID, "error", err.Error())
		return false
	}
	if s.retrieval.Available() && !s.retrieval.IndexSession(ctx, current.SessionID) {
		s.logger.Warn("Session saved but not indexed", "session_id", current.SessionID)
	}
	return true
}

// LoadSession replaces the live session with a stored one.
func (s *ChatService) LoadSession(ctx context.Context, sessionID string) bool {
	loaded, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			s.logger.Error("Loading session failed", "session_id", sessionID, "error", err.Error())
		}
		return false
	}
	s.sessions.ReplaceSession(loaded)
	return true
}

// DeleteSession removes a stored session and its index entries.
func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) bool {
	if !s.retrieval.RemoveSession(ctx, sessionID) {
		s.logger.Warn("Index cleanup failed before delete", "session_id", sessionID)
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			s.logger.Error("Deleting session failed", "session_id", sessionID, "error", err.Error())
		}
		return false
	}
	return true
}

// ListSessions returns saved session records, most recently updated
// first. Storage errors shrink the result to empty.
func (s *ChatService) ListSessions(ctx context.Context) []domain.SessionRecord {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Listing sessions failed", "error", err.Error())
		return []domain.SessionRecord{}
	}
	return records
}

// SearchHistory finds stored messages containing the query substring.
func (s *ChatService) SearchHistory(ctx context.Context, query string, limit int) []domain.SearchResult {
	if limit <= 0 {
		limit = 20
	}
	hits, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		s.logger.Error("History search failed", "error", err.Error())
		return []domain.SearchResult{}
	}
	return hits
}

// Statistics reports aggregate counters. A failing store leaves its
// section nil rather than failing the whole report.
func (s *ChatService) Statistics(ctx context.Context) Statistics {
	stats := Statistics{
		Retrieval: s.retrieval.Statistics(ctx),
		Session:   s.sessions.Stats(),
	}
	storeStats, err := s.repo.Statistics(ctx)
	if err != nil {
		s.logger.Error("Store statistics failed", "error", err.Error())
	} else {
		stats.Store = storeStats
	}
	return stats
}

// SetModel switches the active model; unknown names are rejected.
func (s *ChatService) SetModel(name string) bool {
	return s.models.SetCurrent(name)
}

// Models lists the model registry including the fallback entry.
func (s *ChatService) Models() []model.Info {
	return s.models.AvailableModels()
}

// Export renders the live session in the requested format.
func (s *ChatService) Export(format string) string {
	return s.sessions.Export(format)
}

// Sessions exposes the session manager for handlers that operate on the
// live session directly.
func (s *ChatService) Sessions() *SessionManager {
	return s.sessions
}

// IndexAll re-indexes every stored session.
func (s *ChatService) IndexAll(ctx context.Context) int {
	return s.retrieval.IndexAll(ctx)
}

// IndexSession re-indexes one stored session.
func (s *ChatService) IndexSession(ctx context.Context, sessionID string) bool {
	return s.retrieval.IndexSession(ctx, sessionID)
}

// RetrievalQuery exposes raw context retrieval for the search endpoint.
func (s *ChatService) RetrievalQuery(ctx context.Context, query string, maxResults int) []rag.ContextResult {
	return s.retrieval.Query(ctx, query, maxResults)
}
