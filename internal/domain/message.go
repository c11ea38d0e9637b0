// File: internal/domain/message.go
package domain

import "time"

// Message author kinds.
const (
	MessageTypeUser   = "user"
	MessageTypeBot    = "bot"
	MessageTypeSystem = "system"
)

// Message is a single utterance in a live chat session. Content, type and
// timestamp are fixed at creation; only metadata may be enriched later.
type Message struct {
	Content     string         `json:"content"`
	MessageType string         `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(content, messageType string) Message {
	return Message{
		Content:     content,
		MessageType: messageType,
		Timestamp:   time.Now(),
		Metadata:    map[string]any{},
	}
}

// MessageRecord is the persisted projection of a Message.
type MessageRecord struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	SessionID   string    `json:"session_id" gorm:"index;not null"`
	Content     string    `json:"content" gorm:"not null"`
	MessageType string    `json:"message_type" gorm:"not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"index"`
	Metadata    string    `json:"metadata"` // JSON-encoded message metadata
}

func (MessageRecord) TableName() string { return "messages" }
