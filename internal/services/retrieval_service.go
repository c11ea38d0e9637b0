// File: internal/services/retrieval_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smartbot-ai/smartbot/internal/repository/session"
	"github.com/smartbot-ai/smartbot/internal/services/ai"
	"github.com/smartbot-ai/smartbot/internal/services/rag"
	"github.com/smartbot-ai/smartbot/internal/services/vector"
)

// RetrievalStats summarizes index health for the stats endpoint.
type RetrievalStats struct {
	Available     bool  `json:"available"`
	IndexedCount  int64 `json:"indexed_count"`
	ErrorOccurred bool  `json:"error_occurred,omitempty"`
}

// RetrievalService maintains the semantic index over saved conversations
// and answers context queries for prompt building. The vector backend is
// optional: when it is absent or failing, queries degrade to substring
// search over the relational store and indexing becomes a no-op.
type RetrievalService struct {
	repo     session.SessionRepository
	index    vector.Index
	embedder ai.EmbeddingProvider
	config   *rag.Config
	logger   rag.Logger
}

func NewRetrievalService(
	repo session.SessionRepository,
	index vector.Index,
	embedder ai.EmbeddingProvider,
	config *rag.Config,
	logger rag.Logger,
) *RetrievalService {
	if config == nil {
		config = rag.DefaultConfig()
	}
	return &RetrievalService{
		repo:     repo,
		index:    index,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// Available reports whether the semantic backend can serve requests.
func (s *RetrievalService) Available() bool {
	return s.index != nil && s.embedder != nil
}

// IndexSession embeds and upserts every substantial message of a saved
// session. Messages at or below the minimum length carry too little
// meaning to retrieve and are skipped. Re-indexing a session overwrites
// its previous entries because document IDs are position-stable.
func (s *RetrievalService) IndexSession(ctx context.Context, sessionID string) bool {
	if !s.Available() {
		return false
	}

	sess, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		s.logger.Error("Cannot index session: load failed", "session_id", sessionID, "error", err.Error())
		return false
	}

	indexed := 0
	for i, msg := range sess.Messages {
		content := strings.TrimSpace(msg.Content)
		if utf8.RuneCountInString(content) <= s.config.MinIndexLength {
			continue
		}

		embedding, err := s.embedder.CreateEmbedding(ctx, content)
		if err != nil {
			s.logger.Error("Embedding failed during indexing", "session_id", sessionID, "message_index", i, "error", err.Error())
			return false
		}

		docID := fmt.Sprintf("%s_%d", sessionID, i)
		metadata := map[string]any{
			"content":       content,
			"session_id":    sessionID,
			"message_type":  msg.MessageType,
			"timestamp":     msg.Timestamp.Format("2006-01-02T15:04:05"),
			"message_index": i,
		}
		if err := s.index.Upsert(ctx, docID, embedding, metadata); err != nil {
			s.logger.Error("Upsert failed during indexing", "session_id", sessionID, "doc_id", docID, "error", err.Error())
			return false
		}
		indexed++
	}

	s.logger.Info("Session indexed", "session_id", sessionID, "documents", indexed)
	return true
}

// IndexAll indexes every saved session and returns how many succeeded.
// A failing session is logged and skipped so one bad record cannot block
// the rest of the store.
func (s *RetrievalService) IndexAll(ctx context.Context) int {
	if !s.Available() {
		return 0
	}

	records, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Cannot index store: listing failed", "error", err.Error())
		return 0
	}

	succeeded := 0
	for _, record := range records {
		if s.IndexSession(ctx, record.ID) {
			succeeded++
		}
	}
	s.logger.Info("Bulk indexing finished", "sessions", len(records), "indexed", succeeded)
	return succeeded
}

// Query returns ranked context snippets for the given text. Vector search
// results carry the backend similarity score; when the backend is missing
// or errors, substring matches from the relational store are returned with
// a fixed neutral score and tagged accordingly. Failures never propagate,
// the result just shrinks to empty.
func (s *RetrievalService) Query(ctx context.Context, text string, maxResults int) []rag.ContextResult {
	if maxResults <= 0 {
		maxResults = s.config.RetrievalTopK
	}

	if s.Available() {
		results, err := s.queryVector(ctx, text, maxResults)
		if err == nil {
			return results
		}
		s.logger.Warn("Vector query failed, degrading to text search", "error", err.Error())
	}
	return s.queryText(ctx, text, maxResults)
}

func (s *RetrievalService) queryVector(ctx context.Context, text string, maxResults int) ([]rag.ContextResult, error) {
	embedding, err := s.embedder.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	matches, err := s.index.QuerySimilar(ctx, embedding, maxResults)
	if err != nil {
		return nil, err
	}

	results := make([]rag.ContextResult, 0, len(matches))
	for _, match := range matches {
		content, _ := match.Metadata["content"].(string)
		if content == "" {
			// Older index entries stored no content payload; skip them
			// rather than surface an empty snippet.
			continue
		}
		results = append(results, rag.ContextResult{
			Content:        content,
			Metadata:       match.Metadata,
			RelevanceScore: float64(match.Score),
			Source:         rag.SourceVectorSearch,
		})
	}
	return results, nil
}

func (s *RetrievalService) queryText(ctx context.Context, text string, maxResults int) []rag.ContextResult {
	hits, err := s.repo.Search(ctx, text, maxResults)
	if err != nil {
		s.logger.Error("Text search fallback failed", "error", err.Error())
		return nil
	}

	results := make([]rag.ContextResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, rag.ContextResult{
			Content: hit.Content,
			Metadata: map[string]any{
				"session_id":   hit.SessionID,
				"session_name": hit.SessionName,
				"message_type": hit.MessageType,
				"timestamp":    hit.Timestamp.Format("2006-01-02T15:04:05"),
			},
			RelevanceScore: s.config.TextSearchScore,
			Source:         rag.SourceTextSearch,
		})
	}
	return results
}

// RemoveSession drops a session's vectors from the index. Without a
// backend there is nothing to remove, so the call succeeds.
func (s *RetrievalService) RemoveSession(ctx context.Context, sessionID string) bool {
	if !s.Available() {
		return true
	}
	if err := s.index.DeleteBySession(ctx, sessionID); err != nil {
		s.logger.Error("Removing session vectors failed", "session_id", sessionID, "error", err.Error())
		return false
	}
	return true
}

// Statistics reports the index document count.
func (s *RetrievalService) Statistics(ctx context.Context) RetrievalStats {
	if !s.Available() {
		return RetrievalStats{Available: false}
	}
	count, err := s.index.Count(ctx)
	if err != nil {
		s.logger.Error("Index stats failed", "error", err.Error())
		return RetrievalStats{Available: true, ErrorOccurred: true}
	}
	return RetrievalStats{Available: true, IndexedCount: count}
}
