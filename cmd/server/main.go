// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/smartbot-ai/smartbot/internal/config"
	"github.com/smartbot-ai/smartbot/internal/domain"
	"github.com/smartbot-ai/smartbot/internal/handlers"
	"github.com/smartbot-ai/smartbot/internal/middleware"
	"github.com/smartbot-ai/smartbot/internal/ratelimit"
	"github.com/smartbot-ai/smartbot/internal/repository/session"
	"github.com/smartbot-ai/smartbot/internal/services"
	"github.com/smartbot-ai/smartbot/internal/services/ai"
	"github.com/smartbot-ai/smartbot/internal/services/model"
	"github.com/smartbot-ai/smartbot/internal/services/rag"
	"github.com/smartbot-ai/smartbot/internal/services/vector"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("smartbot")

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("DB directory error: %v", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.SessionRecord{}, &domain.MessageRecord{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	sessionRepo := session.NewSessionRepository(db)

	// --- AI provider (optional) ---
	var provider *ai.OpenAIProvider
	if cfg.AIEnabled() {
		aiCfg := ai.DefaultConfig()
		aiCfg.LLMKey = cfg.LLMAPIKey
		aiCfg.LLMBaseURL = cfg.LLMBaseURL
		aiCfg.EmbeddingKey = cfg.EmbeddingAPIKey
		aiCfg.EmbeddingBaseURL = cfg.EmbeddingBaseURL
		aiCfg.EmbeddingModel = cfg.EmbeddingModelName

		provider, err = ai.NewOpenAIProvider(aiCfg)
		if err != nil {
			logger.Warn("AI provider unavailable, running in basic mode", "error", err.Error())
			provider = nil
		}
	} else {
		logger.Info("No AI backend configured, running in basic mode")
	}

	// --- Vector index (optional, probed once at startup) ---
	var index vector.Index
	if cfg.VectorEnabled() {
		vecCfg := vector.DefaultConfig()
		vecCfg.APIKey = cfg.PineconeAPIKey
		vecCfg.IndexHost = cfg.PineconeIndexHost
		vecCfg.Namespace = cfg.PineconeNamespace

		client, err := vector.NewClientService(vecCfg, logger)
		if err != nil {
			logger.Warn("Vector index unavailable, retrieval degrades to text search", "error", err.Error())
		} else {
			probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := client.HealthCheck(probeCtx); err != nil {
				logger.Warn("Vector index unreachable, retrieval degrades to text search", "error", err.Error())
			} else {
				index = vector.NewVectorService(client, vector.NewRetryService(vecCfg, logger), vecCfg, logger)
			}
			cancel()
		}
	} else {
		logger.Info("No vector index configured, retrieval degrades to text search")
	}

	// --- Services ---
	ragCfg := rag.DefaultConfig()
	ragCfg.RetrievalTopK = cfg.RetrievalTopK
	ragCfg.MaxContextChars = cfg.MaxContextChars
	if err := ragCfg.Validate(); err != nil {
		log.Fatalf("Retrieval configuration error: %v", err)
	}

	var embedder ai.EmbeddingProvider
	var completer ai.CompletionProvider
	if provider != nil {
		embedder = provider
		completer = provider
	}

	retrieval := services.NewRetrievalService(sessionRepo, index, embedder, ragCfg, logger)
	prompts := rag.NewPromptBuilder(ragCfg, retrieval, logger)
	models := model.NewManager(completer, enabledSpecs(cfg.ChatModels), logger)
	sessions := services.NewSessionManager()

	chatService := services.NewChatService(sessions, sessionRepo, retrieval, prompts, models, logger)

	// --- Handlers ---
	chatHandler := handlers.NewChatHandler(chatService)

	chatLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultChatConfig())
	defer chatLimiter.Stop()

	// --- Router Setup ---
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	chat := api.PathPrefix("/chat").Subrouter()
	chat.Use(middleware.RateLimitMiddleware(chatLimiter, "chat"))
	chat.HandleFunc("", chatHandler.HandleChatMessage).Methods("POST")

	api.HandleFunc("/sessions", chatHandler.ListSessions).Methods("GET")
	api.HandleFunc("/sessions", chatHandler.SaveSession).Methods("POST")
	api.HandleFunc("/sessions/new", chatHandler.NewSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", chatHandler.LoadSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", chatHandler.DeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/index", chatHandler.IndexSession).Methods("POST")
	api.HandleFunc("/index", chatHandler.IndexAll).Methods("POST")
	api.HandleFunc("/search", chatHandler.SearchHistory).Methods("GET")
	api.HandleFunc("/export", chatHandler.ExportSession).Methods("GET")
	api.HandleFunc("/models", chatHandler.ListModels).Methods("GET")
	api.HandleFunc("/models/current", chatHandler.SetCurrentModel).Methods("PUT")
	api.HandleFunc("/stats", chatHandler.GetStatistics).Methods("GET")

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("SmartBot Pro - Conversational Assistant")
	log.Printf("Server starting on port %s", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// enabledSpecs filters the built-in model table down to the configured
// comma-separated keys; an empty filter enables everything.
func enabledSpecs(filter string) []model.Spec {
	specs := model.DefaultSpecs()
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return specs
	}

	enabled := make(map[string]bool)
	for _, key := range strings.Split(filter, ",") {
		enabled[strings.TrimSpace(key)] = true
	}

	kept := specs[:0]
	for _, spec := range specs {
		if enabled[spec.Key] {
			kept = append(kept, spec)
		}
	}
	return kept
}
