// File: internal/domain/session.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat themes.
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
	ThemeBlue    = "blue"
)

// ChatSession is one live conversation: an ordered sequence of messages
// plus presentation metadata. Exactly one session is current at a time.
type ChatSession struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Theme     string    `json:"theme"`
	ModelName string    `json:"model_name"`
}

// NewChatSession creates an empty session bound to the given model.
func NewChatSession(modelName string) *ChatSession {
	now := time.Now()
	return &ChatSession{
		SessionID: uuid.NewString(),
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
		Theme:     ThemeDefault,
		ModelName: modelName,
	}
}

// AddMessage appends a message and advances UpdatedAt.
func (s *ChatSession) AddMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// RecentMessages returns up to count messages from the tail of the session.
func (s *ChatSession) RecentMessages(count int) []Message {
	if count <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if len(s.Messages) <= count {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-count:]
}

// SessionRecord is the denormalized projection of a ChatSession used for
// listing saved sessions without loading message bodies. MessageCount is a
// snapshot taken at save time, not kept live-consistent.
type SessionRecord struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"index"`
	MessageCount int       `json:"message_count"`
	Metadata     string    `json:"metadata"` // JSON: {"theme": ..., "model_name": ...}
}

func (SessionRecord) TableName() string { return "chat_sessions" }

// SearchResult is one message hit from a substring search over stored
// messages, joined with the owning session's display name.
type SearchResult struct {
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"session_id"`
	SessionName string    `json:"session_name"`
}

// StoreStats summarizes the relational store.
type StoreStats struct {
	TotalSessions  int64      `json:"total_sessions"`
	TotalMessages  int64      `json:"total_messages"`
	LatestActivity *time.Time `json:"latest_activity,omitempty"`
}
