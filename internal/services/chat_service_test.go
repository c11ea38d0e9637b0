// File: internal/services/chat_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbot-ai/smartbot/internal/domain"
	"github.com/smartbot-ai/smartbot/internal/services/model"
	"github.com/smartbot-ai/smartbot/internal/services/rag"
)

// newTestChatService wires the whole pipeline with an in-memory store and
// no generative or vector backends, so every reply comes from the
// deterministic fallback and retrieval degrades to substring search.
func newTestChatService(t *testing.T) *ChatService {
	t.Helper()
	repo := newTestSessionRepo(t)
	logger := &NoOpLogger{}
	cfg := rag.DefaultConfig()

	retrieval := NewRetrievalService(repo, nil, nil, cfg, logger)
	prompts := rag.NewPromptBuilder(cfg, retrieval, logger)
	models := model.NewManager(nil, model.DefaultSpecs(), logger)
	sessions := NewSessionManager()

	return NewChatService(sessions, repo, retrieval, prompts, models, logger)
}

func TestHandleMessageRoundTrip(t *testing.T) {
	svc := newTestChatService(t)

	reply, err := svc.HandleMessage(context.Background(), "What is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "4", reply.Content)
	assert.Equal(t, domain.MessageTypeBot, reply.MessageType)
	assert.Equal(t, model.FallbackName, reply.Metadata["model"])

	// Welcome + user + bot.
	msgs := svc.Sessions().Messages(0)
	require.Len(t, msgs, 3)
	assert.Equal(t, "What is 2+2?", msgs[1].Content)
}

func TestHandleMessageRejectsEmpty(t *testing.T) {
	svc := newTestChatService(t)

	_, err := svc.HandleMessage(context.Background(), "   ")
	assert.Error(t, err)
}

func TestSaveLoadDeleteLifecycle(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, "What is the capital of France?")
	require.NoError(t, err)
	savedID := svc.Sessions().Current().SessionID

	require.True(t, svc.SaveSession(ctx, "geography", "capitals chat"))

	records := svc.ListSessions(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, "geography", records[0].Name)
	assert.Equal(t, 3, records[0].MessageCount)

	// Start a new conversation, then load the saved one back.
	svc.Sessions().NewSession()
	require.True(t, svc.LoadSession(ctx, savedID))
	assert.Equal(t, savedID, svc.Sessions().Current().SessionID)
	assert.Len(t, svc.Sessions().Messages(0), 3)

	require.True(t, svc.DeleteSession(ctx, savedID))
	assert.False(t, svc.LoadSession(ctx, savedID))
	assert.Empty(t, svc.ListSessions(ctx))
}

func TestDeleteMissingSessionReturnsFalse(t *testing.T) {
	svc := newTestChatService(t)

	assert.False(t, svc.DeleteSession(context.Background(), "no-such-session"))
}

func TestSearchHistoryFindsSavedMessages(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, "Tell me about photosynthesis")
	require.NoError(t, err)
	require.True(t, svc.SaveSession(ctx, "biology", ""))

	hits := svc.SearchHistory(ctx, "photosynthesis", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, "biology", hits[0].SessionName)
}

func TestSetModelUnknownLeavesSelection(t *testing.T) {
	svc := newTestChatService(t)

	assert.False(t, svc.SetModel("gpt-99"))

	reply, err := svc.HandleMessage(context.Background(), "What is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "4", reply.Content)
}

func TestModelsIncludeFallback(t *testing.T) {
	svc := newTestChatService(t)

	infos := svc.Models()
	found := false
	for _, info := range infos {
		if info.Key == model.FallbackName {
			found = true
			assert.True(t, info.Current)
		}
	}
	assert.True(t, found)
}

func TestStatisticsAggregates(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, "What is 2+2?")
	require.NoError(t, err)
	require.True(t, svc.SaveSession(ctx, "math", ""))

	stats := svc.Statistics(ctx)
	require.NotNil(t, stats.Store)
	assert.EqualValues(t, 1, stats.Store.TotalSessions)
	assert.EqualValues(t, 3, stats.Store.TotalMessages)
	assert.False(t, stats.Retrieval.Available)
	assert.Equal(t, 3, stats.Session.TotalMessages)
}
