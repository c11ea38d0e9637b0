// File: internal/repository/session/session_repository.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartbot-ai/smartbot/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// sessionMetadata is the JSON blob stored on a session record.
type sessionMetadata struct {
	Theme     string `json:"theme"`
	ModelName string `json:"model_name"`
}

type gormSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &gormSessionRepository{db: db}
}

// Save upserts the session record, then replaces all stored messages for the
// session. Everything runs in one transaction so a mid-save failure can never
// leave a session with a partial message set.
func (r *gormSessionRepository) Save(ctx context.Context, session *domain.ChatSession, name, description string) error {
	if err := r.validateSessionInput(session, name); err != nil {
		log.Printf("[SessionRepository] Validation failed: %v", err)
		return fmt.Errorf("validation failed: %w", err)
	}

	metadata, err := json.Marshal(sessionMetadata{Theme: session.Theme, ModelName: session.ModelName})
	if err != nil {
		return errors.New("could not encode session metadata")
	}

	record := domain.SessionRecord{
		ID:           session.SessionID,
		Name:         name,
		Description:  description,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
		MessageCount: len(session.Messages),
		Metadata:     string(metadata),
	}

	messages := make([]domain.MessageRecord, 0, len(session.Messages))
	for _, msg := range session.Messages {
		msgMetadata, err := json.Marshal(msg.Metadata)
		if err != nil {
			return errors.New("could not encode message metadata")
		}
		messages = append(messages, domain.MessageRecord{
			ID:          uuid.NewString(),
			SessionID:   session.SessionID,
			Content:     msg.Content,
			MessageType: msg.MessageType,
			Timestamp:   msg.Timestamp,
			Metadata:    string(msgMetadata),
		})
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", session.SessionID).Delete(&domain.MessageRecord{}).Error; err != nil {
			return err
		}
		if len(messages) > 0 {
			if err := tx.CreateInBatches(messages, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[SessionRepository] Database error saving session %s: %v", session.SessionID, err)
		return errors.New("database error saving session")
	}

	log.Printf("[SessionRepository] Session saved: %s with %d messages", session.SessionID, len(messages))
	return nil
}

// Load reconstructs a saved session, messages ordered by timestamp ascending.
func (r *gormSessionRepository) Load(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	if sessionID == "" {
		return nil, errors.New("invalid session ID")
	}

	var record domain.SessionRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		log.Printf("[SessionRepository] Database error loading session %s: %v", sessionID, err)
		return nil, errors.New("database query failed")
	}

	var metadata sessionMetadata
	if record.Metadata != "" {
		// Metadata written by older saves may be missing fields; defaults below cover that.
		_ = json.Unmarshal([]byte(record.Metadata), &metadata)
	}
	if metadata.Theme == "" {
		metadata.Theme = domain.ThemeDefault
	}

	session := &domain.ChatSession{
		SessionID: record.ID,
		Messages:  []domain.Message{},
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		Theme:     metadata.Theme,
		ModelName: metadata.ModelName,
	}

	var rows []domain.MessageRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp asc").
		Find(&rows).Error
	if err != nil {
		log.Printf("[SessionRepository] Database error loading messages for session %s: %v", sessionID, err)
		return nil, errors.New("database error fetching messages")
	}

	for _, row := range rows {
		msgMetadata := map[string]any{}
		if row.Metadata != "" {
			_ = json.Unmarshal([]byte(row.Metadata), &msgMetadata)
		}
		session.Messages = append(session.Messages, domain.Message{
			Content:     row.Content,
			MessageType: row.MessageType,
			Timestamp:   row.Timestamp,
			Metadata:    msgMetadata,
		})
	}

	return session, nil
}

func (r *gormSessionRepository) ListAll(ctx context.Context) ([]domain.SessionRecord, error) {
	var records []domain.SessionRecord
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Find(&records).Error
	if err != nil {
		log.Printf("[SessionRepository] Database error listing sessions: %v", err)
		return nil, errors.New("database error listing sessions")
	}
	return records, nil
}

// Delete removes messages first, then the session record.
func (r *gormSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("invalid session ID")
	}

	var rowsAffected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&domain.MessageRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", sessionID).Delete(&domain.SessionRecord{})
		if result.Error != nil {
			return result.Error
		}
		rowsAffected = result.RowsAffected
		return nil
	})
	if err != nil {
		log.Printf("[SessionRepository] Database error deleting session %s: %v", sessionID, err)
		return errors.New("database error deleting session")
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	log.Printf("[SessionRepository] Session deleted: %s", sessionID)
	return nil
}

// Search performs a case-insensitive substring search over stored message
// content, most recent first, joined with the owning session's name.
func (r *gormSessionRepository) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if err := r.validateSearchTerm(query); err != nil {
		return nil, fmt.Errorf("invalid search term: %w", err)
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	pattern := fmt.Sprintf("%%%s%%", strings.ToLower(query))

	var results []domain.SearchResult
	err := r.db.WithContext(ctx).
		Table("messages").
		Select("messages.content, messages.message_type, messages.timestamp, chat_sessions.id AS session_id, chat_sessions.name AS session_name").
		Joins("JOIN chat_sessions ON messages.session_id = chat_sessions.id").
		Where("LOWER(messages.content) LIKE ?", pattern).
		Order("messages.timestamp DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		log.Printf("[SessionRepository] Database error searching messages: %v", err)
		return nil, errors.New("database error searching messages")
	}

	return results, nil
}

func (r *gormSessionRepository) Statistics(ctx context.Context) (*domain.StoreStats, error) {
	stats := &domain.StoreStats{}

	if err := r.db.WithContext(ctx).Model(&domain.SessionRecord{}).Count(&stats.TotalSessions).Error; err != nil {
		log.Printf("[SessionRepository] Database error counting sessions: %v", err)
		return nil, errors.New("database error counting sessions")
	}

	if err := r.db.WithContext(ctx).Model(&domain.MessageRecord{}).Count(&stats.TotalMessages).Error; err != nil {
		log.Printf("[SessionRepository] Database error counting messages: %v", err)
		return nil, errors.New("database error counting messages")
	}

	var latest domain.SessionRecord
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(1).
		Find(&latest).Error
	if err != nil {
		log.Printf("[SessionRepository] Database error finding latest activity: %v", err)
		return nil, errors.New("database error finding latest activity")
	}
	if latest.ID != "" {
		ts := latest.UpdatedAt
		stats.LatestActivity = &ts
	}

	return stats, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormSessionRepository) validateSessionInput(session *domain.ChatSession, name string) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.SessionID == "" {
		return errors.New("session ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("session name is required")
	}
	if len(name) > 200 {
		return errors.New("session name must be 200 characters or less")
	}
	return nil
}

func (r *gormSessionRepository) validateSearchTerm(term string) error {
	if strings.TrimSpace(term) == "" {
		return errors.New("search term cannot be empty")
	}
	if len(term) > 100 {
		return errors.New("search term too long")
	}
	// Prevent wildcard injection in LIKE queries
	if strings.ContainsAny(term, `%_\`) {
		return errors.New("invalid characters in search term")
	}
	return nil
}
