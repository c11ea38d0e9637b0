// File: internal/services/retrieval_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smartbot-ai/smartbot/internal/domain"
	"github.com/smartbot-ai/smartbot/internal/repository/session"
	"github.com/smartbot-ai/smartbot/internal/services/rag"
	"github.com/smartbot-ai/smartbot/internal/services/vector"
)

type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("embedding backend down")
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

type fakeIndex struct {
	upserts  map[string]map[string]any
	matches  []vector.Match
	failNext bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{upserts: make(map[string]map[string]any)}
}

func (f *fakeIndex) Upsert(_ context.Context, id string, _ []float32, metadata map[string]any) error {
	if f.failNext {
		return errors.New("upsert failed")
	}
	f.upserts[id] = metadata
	return nil
}

func (f *fakeIndex) QuerySimilar(_ context.Context, _ []float32, _ int) ([]vector.Match, error) {
	if f.failNext {
		return nil, errors.New("query failed")
	}
	return f.matches, nil
}

func (f *fakeIndex) DeleteBySession(_ context.Context, sessionID string) error {
	if f.failNext {
		return errors.New("delete failed")
	}
	for id, md := range f.upserts {
		if md["session_id"] == sessionID {
			delete(f.upserts, id)
		}
	}
	return nil
}

func (f *fakeIndex) Count(_ context.Context) (int64, error) {
	return int64(len(f.upserts)), nil
}

func (f *fakeIndex) HealthCheck(_ context.Context) error { return nil }

func newTestSessionRepo(t *testing.T) session.SessionRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.SessionRecord{}, &domain.MessageRecord{}))
	return session.NewSessionRepository(db)
}

func saveSession(t *testing.T, repo session.SessionRepository, contents ...string) *domain.ChatSession {
	t.Helper()
	sess := domain.NewChatSession("flan-t5-base")
	for _, content := range contents {
		sess.AddMessage(domain.NewMessage(content, domain.MessageTypeUser))
	}
	require.NoError(t, repo.Save(context.Background(), sess, "test session", ""))
	return sess
}

func TestIndexSessionSkipsShortMessages(t *testing.T) {
	repo := newTestSessionRepo(t)
	index := newFakeIndex()
	embedder := &fakeEmbedder{}
	svc := NewRetrievalService(repo, index, embedder, rag.DefaultConfig(), &NoOpLogger{})

	sess := saveSession(t, repo,
		"hi",
		"this message is long enough to be worth indexing",
	)

	require.True(t, svc.IndexSession(context.Background(), sess.SessionID))

	require.Len(t, index.upserts, 1)
	docID := sess.SessionID + "_1"
	md, ok := index.upserts[docID]
	require.True(t, ok, "expected document id keyed by session and position")
	assert.Equal(t, sess.SessionID, md["session_id"])
	assert.Equal(t, domain.MessageTypeUser, md["message_type"])
	assert.Equal(t, 1, md["message_index"])
	assert.Equal(t, "this message is long enough to be worth indexing", md["content"])
	assert.Equal(t, 1, embedder.calls)
}

func TestIndexSessionUnknownSession(t *testing.T) {
	repo := newTestSessionRepo(t)
	svc := NewRetrievalService(repo, newFakeIndex(), &fakeEmbedder{}, rag.DefaultConfig(), &NoOpLogger{})

	assert.False(t, svc.IndexSession(context.Background(), "no-such-session"))
}

func TestIndexSessionWithoutBackend(t *testing.T) {
	repo := newTestSessionRepo(t)
	svc := NewRetrievalService(repo, nil, nil, rag.DefaultConfig(), &NoOpLogger{})

	sess := saveSession(t, repo, "a perfectly indexable message body")
	assert.False(t, svc.IndexSession(context.Background(), sess.SessionID))
}

func TestIndexAllContinuesPastFailures(t *testing.T) {
	repo := newTestSessionRepo(t)
	index := newFakeIndex()
	svc := NewRetrievalService(repo, index, &fakeEmbedder{}, rag.DefaultConfig(), &NoOpLogger{})

	saveSession(t, repo, "first session with an indexable message")
	saveSession(t, repo, "second session with an indexable message")

	assert.Equal(t, 2, svc.IndexAll(context.Background()))
	assert.Len(t, index.upserts, 2)
}

func TestQueryUsesVectorScores(t *testing.T) {
	repo := newTestSessionRepo(t)
	index := newFakeIndex()
	index.matches = []vector.Match{
		{ID: "s_0", Score: 0.92, Metadata: map[string]any{"content": "goroutines are cheap"}},
		{ID: "s_1", Score: 0.81, Metadata: map[string]any{"content": "channels synchronize"}},
	}
	svc := NewRetrievalService(repo, index, &fakeEmbedder{}, rag.DefaultConfig(), &NoOpLogger{})

	results := svc.Query(context.Background(), "concurrency", 3)

	require.Len(t, results, 2)
	assert.Equal(t, rag.SourceVectorSearch, results[0].Source)
	assert.InDelta(t, 0.92, results[0].RelevanceScore, 1e-6)
	assert.Equal(t, "goroutines are cheap", results[0].Content)
}

func TestQueryDegradesToTextSearch(t *testing.T) {
	repo := newTestSessionRepo(t)
	saveSession(t, repo, "we talked about goroutines at length yesterday")

	// No vector backend at all.
	svc := NewRetrievalService(repo, nil, nil, rag.DefaultConfig(), &NoOpLogger{})
	results := svc.Query(context.Background(), "goroutines", 5)

	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, rag.SourceTextSearch, r.Source)
		assert.InDelta(t, 0.5, r.RelevanceScore, 1e-6)
	}
}

func TestQueryFallsBackWhenVectorFails(t *testing.T) {
	repo := newTestSessionRepo(t)
	saveSession(t, repo, "we talked about goroutines at length yesterday")

	index := newFakeIndex()
	index.failNext = true
	svc := NewRetrievalService(repo, index, &fakeEmbedder{}, rag.DefaultConfig(), &NoOpLogger{})

	results := svc.Query(context.Background(), "goroutines", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, rag.SourceTextSearch, results[0].Source)
}

func TestQueryNeverMixesSources(t *testing.T) {
	repo := newTestSessionRepo(t)
	index := newFakeIndex()
	index.matches = []vector.Match{
		{ID: "s_0", Score: 0.7, Metadata: map[string]any{"content": "vector hit"}},
	}
	svc := NewRetrievalService(repo, index, &fakeEmbedder{}, rag.DefaultConfig(), &NoOpLogger{})

	results := svc.Query(context.Background(), "anything", 5)
	for _, r := range results {
		assert.Equal(t, rag.SourceVectorSearch, r.Source)
	}
}

func TestRemoveSessionWithoutBackendSucceeds(t *testing.T) {
	repo := newTestSessionRepo(t)
	svc := NewRetrievalService(repo, nil, nil, rag.DefaultConfig(), &NoOpLogger{})

	assert.True(t, svc.RemoveSession(context.Background(), "any-session"))
}

func TestRemoveSessionDropsVectors(t *testing.T) {
	repo := newTestSessionRepo(t)
	index := newFakeIndex()
	svc := NewRetrievalService(repo, index, &fakeEmbedder{}, rag.DefaultConfig(), &NoOpLogger{})

	sess := saveSession(t, repo, "a perfectly indexable message body")
	require.True(t, svc.IndexSession(context.Background(), sess.SessionID))
	require.Len(t, index.upserts, 1)

	assert.True(t, svc.RemoveSession(context.Background(), sess.SessionID))
	assert.Empty(t, index.upserts)
}

func TestStatisticsReportsAvailability(t *testing.T) {
	repo := newTestSessionRepo(t)

	offline := NewRetrievalService(repo, nil, nil, rag.DefaultConfig(), &NoOpLogger{})
	assert.False(t, offline.Statistics(context.Background()).Available)

	online := NewRetrievalService(repo, newFakeIndex(), &fakeEmbedder{}, rag.DefaultConfig(), &NoOpLogger{})
	stats := online.Statistics(context.Background())
	assert.True(t, stats.Available)
	assert.Zero(t, stats.IndexedCount)
}
