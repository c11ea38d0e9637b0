// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/smartbot-ai/smartbot/internal/services"
)

type ChatHandler struct {
	ChatService *services.ChatService
}

func NewChatHandler(cs *services.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: cs}
}

// HandleChatMessage runs one conversation turn.
func (h *ChatHandler) HandleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, "Message is required", http.StatusBadRequest)
		return
	}

	reply, err := h.ChatService.HandleMessage(r.Context(), req.Message)
	if err != nil {
		writeError(w, "Error processing chat: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reply":   reply,
		"session": h.ChatService.Sessions().Current().SessionID,
	})
}

// ListSessions returns saved session records, most recent first.
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ChatService.ListSessions(r.Context()))
}

// SaveSession persists the live session.
func (h *ChatHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, "Session name is required", http.StatusBadRequest)
		return
	}

	if !h.ChatService.SaveSession(r.Context(), req.Name, req.Description) {
		writeError(w, "Could not save session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id": h.ChatService.Sessions().Current().SessionID,
	})
}

// LoadSession replaces the live session with a stored one.
func (h *ChatHandler) LoadSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if !h.ChatService.LoadSession(r.Context(), sessionID) {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.ChatService.Sessions().Current())
}

// DeleteSession removes a stored session.
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if !h.ChatService.DeleteSession(r.Context(), sessionID) {
		writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": sessionID})
}

// NewSession discards the live session and starts a fresh one.
func (h *ChatHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	session := h.ChatService.Sessions().NewSession()
	writeJSON(w, http.StatusCreated, session)
}

// IndexSession re-indexes one stored session for retrieval.
func (h *ChatHandler) IndexSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if !h.ChatService.IndexSession(r.Context(), sessionID) {
		writeError(w, "Could not index session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"indexed": sessionID})
}

// IndexAll re-indexes every stored session.
func (h *ChatHandler) IndexAll(w http.ResponseWriter, r *http.Request) {
	indexed := h.ChatService.IndexAll(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"indexed_sessions": indexed})
}

// SearchHistory finds stored messages matching the query. The mode
// parameter selects between plain substring search and ranked context
// retrieval.
func (h *ChatHandler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, "Query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	if r.URL.Query().Get("mode") == "context" {
		writeJSON(w, http.StatusOK, h.ChatService.RetrievalQuery(r.Context(), query, limit))
		return
	}
	writeJSON(w, http.StatusOK, h.ChatService.SearchHistory(r.Context(), query, limit))
}

// ExportSession renders the live session in the requested format.
func (h *ChatHandler) ExportSession(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "txt"
	}

	content := h.ChatService.Export(format)
	if content == "" {
		writeError(w, "Unsupported format or empty session", http.StatusBadRequest)
		return
	}

	contentTypes := map[string]string{
		"txt":  "text/plain; charset=utf-8",
		"json": "application/json",
		"md":   "text/markdown; charset=utf-8",
		"html": "text/html; charset=utf-8",
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

// ListModels returns the model registry including the fallback entry.
func (h *ChatHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ChatService.Models())
}

// SetCurrentModel switches the active model.
func (h *ChatHandler) SetCurrentModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, "Model name is required", http.StatusBadRequest)
		return
	}

	if !h.ChatService.SetModel(req.Name) {
		writeError(w, "Unknown model: "+req.Name, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"current": req.Name})
}

// GetStatistics reports store, index and live-session counters.
func (h *ChatHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ChatService.Statistics(r.Context()))
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
