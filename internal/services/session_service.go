// File: internal/services/session_service.go
package services

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"

	"github.com/smartbot-ai/smartbot/internal/domain"
)

// WelcomeMessage opens every new conversation.
const WelcomeMessage = "Hello! I'm SmartBot Pro. How can I assist you today?"

// Preferences holds per-user presentation settings.
type Preferences struct {
	Theme          string `json:"theme"`
	PreferredModel string `json:"preferred_model"`
	AutoScroll     bool   `json:"auto_scroll"`
	ShowTimestamps bool   `json:"show_timestamps"`
	ExportFormat   string `json:"export_format"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:          domain.ThemeDefault,
		PreferredModel: "flan-t5-base",
		AutoScroll:     true,
		ShowTimestamps: false,
		ExportFormat:   "txt",
	}
}

// SessionStats summarizes the live conversation.
type SessionStats struct {
	TotalMessages          int     `json:"total_messages"`
	UserMessages           int     `json:"user_messages"`
	BotMessages            int     `json:"bot_messages"`
	TotalCharacters        int     `json:"total_characters"`
	SessionDurationMinutes float64 `json:"session_duration_minutes"`
	CreatedAt              string  `json:"created_at"`
}

// SessionManager owns the single live chat session and the user's
// preferences. All methods are safe for concurrent use.
type SessionManager struct {
	mu          sync.RWMutex
	current     *domain.ChatSession
	preferences Preferences
}

// NewSessionManager starts with a fresh session already containing the
// welcome message.
func NewSessionManager() *SessionManager {
	m := &SessionManager{preferences: DefaultPreferences()}
	m.current = m.newSession()
	return m
}

func (m *SessionManager) newSession() *domain.ChatSession {
	session := domain.NewChatSession(m.preferences.PreferredModel)
	session.Theme = m.preferences.Theme
	session.AddMessage(domain.NewMessage(WelcomeMessage, domain.MessageTypeBot))
	return session
}

// Current returns the live session.
func (m *SessionManager) Current() *domain.ChatSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// NewSession discards the live session and starts a fresh one.
func (m *SessionManager) NewSession() *domain.ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.newSession()
	return m.current
}

// ReplaceSession swaps in a session loaded from storage.
func (m *SessionManager) ReplaceSession(session *domain.ChatSession) {
	if session == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = session
}

// AddMessage appends a message to the live session and returns it.
func (m *SessionManager) AddMessage(content, messageType string, metadata map[string]any) domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := domain.NewMessage(content, messageType)
	if metadata != nil {
		msg.Metadata = metadata
	}
	m.current.AddMessage(msg)
	return msg
}

// Messages returns up to limit messages from the tail of the live
// session; limit <= 0 returns all of them.
func (m *SessionManager) Messages(limit int) []domain.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		return m.current.Messages
	}
	return m.current.RecentMessages(limit)
}

// ConversationContext renders the recent exchange as prefixed lines for
// model input, keeping only the trailing maxChars characters.
func (m *SessionManager) ConversationContext(maxChars int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	parts := make([]string, 0, 6)
	for _, msg := range m.current.RecentMessages(6) {
		prefix := "Assistant: "
		if msg.MessageType == domain.MessageTypeUser {
			prefix = "User: "
		}
		parts = append(parts, prefix+msg.Content)
	}

	context := strings.Join(parts, "\n")
	if maxChars > 0 && len(context) > maxChars {
		context = context[len(context)-maxChars:]
	}
	return context
}

// Preferences returns a copy of the current preferences.
func (m *SessionManager) Preferences() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.preferences
}

// UpdatePreferences overwrites the supplied fields. Empty strings leave
// the existing value untouched.
func (m *SessionManager) UpdatePreferences(p Preferences) Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Theme != "" {
		m.preferences.Theme = p.Theme
		m.current.Theme = p.Theme
	}
	if p.PreferredModel != "" {
		m.preferences.PreferredModel = p.PreferredModel
	}
	if p.ExportFormat != "" {
		m.preferences.ExportFormat = p.ExportFormat
	}
	m.preferences.AutoScroll = p.AutoScroll
	m.preferences.ShowTimestamps = p.ShowTimestamps
	return m.preferences
}

// Stats summarizes the live session.
func (m *SessionManager) Stats() SessionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := SessionStats{CreatedAt: m.current.CreatedAt.Format("2006-01-02 15:04:05")}
	for _, msg := range m.current.Messages {
		stats.TotalMessages++
		stats.TotalCharacters += len(msg.Content)
		switch msg.MessageType {
		case domain.MessageTypeUser:
			stats.UserMessages++
		case domain.MessageTypeBot:
			stats.BotMessages++
		}
	}
	minutes := time.Since(m.current.CreatedAt).Minutes()
	stats.SessionDurationMinutes = float64(int(minutes*10+0.5)) / 10
	return stats
}

// Export renders the live session in the requested format: "txt", "json",
// "md", or "html" (the markdown rendering passed through goldmark). An
// empty session or unknown format yields an empty string.
func (m *SessionManager) Export(format string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || len(m.current.Messages) == 0 {
		return ""
	}

	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(m.current, "", "  ")
		if err != nil {
			return ""
		}
		return string(data)
	case "txt":
		return m.exportText()
	case "md":
		return m.exportMarkdown()
	case "html":
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(m.exportMarkdown()), &buf); err != nil {
			return ""
		}
		return buf.String()
	}
	return ""
}

func (m *SessionManager) exportText() string {
	lines := []string{
		"Chat Session Export - " + time.Now().Format("2006-01-02 15:04:05"),
		strings.Repeat("=", 50),
	}
	for _, msg := range m.current.Messages {
		prefix := "Bot"
		if msg.MessageType == domain.MessageTypeUser {
			prefix = "You"
		}
		lines = append(lines, "["+msg.Timestamp.Format("15:04:05")+"] "+prefix+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

func (m *SessionManager) exportMarkdown() string {
	lines := []string{
		"# Chat Session Export",
		"**Date:** " + time.Now().Format("2006-01-02 15:04:05"),
		"",
	}
	for _, msg := range m.current.Messages {
		prefix := "Bot"
		if msg.MessageType == domain.MessageTypeUser {
			prefix = "You"
		}
		lines = append(lines, "**["+msg.Timestamp.Format("15:04:05")+"] "+prefix+":** "+msg.Content, "")
	}
	return strings.Join(lines, "\n")
}
