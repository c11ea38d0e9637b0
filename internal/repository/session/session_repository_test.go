// File: internal/repository/session/session_repository_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smartbot-ai/smartbot/internal/domain"
)

func newTestRepo(t *testing.T) SessionRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.SessionRecord{}, &domain.MessageRecord{}))
	return NewSessionRepository(db)
}

func buildSession(t *testing.T, messageCount int) *domain.ChatSession {
	t.Helper()
	session := domain.NewChatSession("flan-t5-base")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < messageCount; i++ {
		msgType := domain.MessageTypeUser
		if i%2 == 1 {
			msgType = domain.MessageTypeBot
		}
		msg := domain.NewMessage(contentFor(i), msgType)
		msg.Timestamp = base.Add(time.Duration(i) * time.Minute)
		session.Messages = append(session.Messages, msg)
	}
	return session
}

func contentFor(i int) string {
	contents := []string{
		"Tell me about Go concurrency patterns",
		"Goroutines are lightweight threads managed by the runtime",
		"What about channels?",
		"Channels let goroutines communicate safely",
		"Thanks, that helps a lot",
	}
	return contents[i%len(contents)]
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := buildSession(t, 5)
	session.Theme = domain.ThemeDark
	require.NoError(t, repo.Save(ctx, session, "Go chat", "concurrency discussion"))

	loaded, err := repo.Load(ctx, session.SessionID)
	require.NoError(t, err)

	assert.Equal(t, session.SessionID, loaded.SessionID)
	assert.Equal(t, domain.ThemeDark, loaded.Theme)
	assert.Equal(t, "flan-t5-base", loaded.ModelName)
	require.Len(t, loaded.Messages, 5)
	for i, msg := range loaded.Messages {
		assert.Equal(t, contentFor(i), msg.Content, "message %d out of order", i)
	}
}

func TestSaveReplacesMessages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := buildSession(t, 3)
	require.NoError(t, repo.Save(ctx, session, "first", ""))

	// Save again with a longer transcript; stored messages must be
	// replaced, not appended.
	session = &domain.ChatSession{
		SessionID: session.SessionID,
		Messages:  buildSession(t, 5).Messages,
		CreatedAt: session.CreatedAt,
		UpdatedAt: time.Now(),
		Theme:     session.Theme,
		ModelName: session.ModelName,
	}
	require.NoError(t, repo.Save(ctx, session, "second", ""))

	loaded, err := repo.Load(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Len(t, loaded.Messages, 5)

	records, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "second", records[0].Name)
	assert.Equal(t, 5, records[0].MessageCount)
}

func TestSaveRequiresName(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Save(context.Background(), buildSession(t, 1), "   ", "")
	assert.Error(t, err)
}

func TestLoadMissingSession(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Load(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteRemovesSessionAndMessages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := buildSession(t, 4)
	require.NoError(t, repo.Save(ctx, session, "doomed", ""))
	require.NoError(t, repo.Delete(ctx, session.SessionID))

	_, err := repo.Load(ctx, session.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	stats, err := repo.Statistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSessions)
	assert.Zero(t, stats.TotalMessages)
}

func TestDeleteMissingSession(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Delete(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSearchFindsSubstringCaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := buildSession(t, 5)
	require.NoError(t, repo.Save(ctx, session, "searchable", ""))

	results, err := repo.Search(ctx, "GOROUTINES", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, hit := range results {
		assert.Contains(t, hit.Content, "oroutines")
		assert.Equal(t, session.SessionID, hit.SessionID)
		assert.Equal(t, "searchable", hit.SessionName)
	}
}

func TestSearchRejectsWildcards(t *testing.T) {
	repo := newTestRepo(t)

	for _, term := range []string{"%", "a_b", `back\slash`, "  "} {
		_, err := repo.Search(context.Background(), term, 10)
		assert.Error(t, err, "term: %q", term)
	}
}

func TestStatistics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := buildSession(t, 2)
	second := buildSession(t, 3)
	second.UpdatedAt = first.UpdatedAt.Add(time.Minute)
	require.NoError(t, repo.Save(ctx, first, "one", ""))
	require.NoError(t, repo.Save(ctx, second, "two", ""))

	stats, err := repo.Statistics(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalSessions)
	assert.EqualValues(t, 5, stats.TotalMessages)
	require.NotNil(t, stats.LatestActivity)
	assert.WithinDuration(t, second.UpdatedAt, *stats.LatestActivity, time.Second)
}
