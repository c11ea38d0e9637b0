// File: cmd/diagnostic/main.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/smartbot-ai/smartbot/internal/config"
	"github.com/smartbot-ai/smartbot/internal/domain"
	"github.com/smartbot-ai/smartbot/internal/services"
	"github.com/smartbot-ai/smartbot/internal/services/ai"
	"github.com/smartbot-ai/smartbot/internal/services/vector"
)

// Probes every configured backend and reports reachability and latency.
// Useful before first start to verify the .env wiring.
func main() {
	log.Println("--- SmartBot backend diagnostic ---")

	cfg := config.Load()
	logger := services.NewLogger("diagnostic")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Relational store.
	start := time.Now()
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Printf("[FAIL] sqlite open (%s): %v", cfg.DatabasePath, err)
	} else if err := db.AutoMigrate(&domain.SessionRecord{}, &domain.MessageRecord{}); err != nil {
		log.Printf("[FAIL] sqlite migration: %v", err)
	} else {
		log.Printf("[OK]   sqlite at %s (%s)", cfg.DatabasePath, time.Since(start))
	}

	// Embedding and completion backends.
	if !cfg.AIEnabled() {
		log.Println("[SKIP] AI backend not configured")
	} else {
		aiCfg := ai.DefaultConfig()
		aiCfg.LLMKey = cfg.LLMAPIKey
		aiCfg.LLMBaseURL = cfg.LLMBaseURL
		aiCfg.EmbeddingKey = cfg.EmbeddingAPIKey
		aiCfg.EmbeddingBaseURL = cfg.EmbeddingBaseURL
		aiCfg.EmbeddingModel = cfg.EmbeddingModelName

		provider, err := ai.NewOpenAIProvider(aiCfg)
		if err != nil {
			log.Printf("[FAIL] AI provider init: %v", err)
		} else {
			start = time.Now()
			embedding, err := provider.CreateEmbedding(ctx, "diagnostic probe")
			if err != nil {
				log.Printf("[FAIL] embedding: %v", err)
			} else {
				log.Printf("[OK]   embedding, %d dimensions (%s)", len(embedding), time.Since(start))
			}

			start = time.Now()
			reply, err := provider.GetCompletion(ctx, "gpt-3.5-turbo", "Reply with the single word: pong")
			if err != nil {
				log.Printf("[FAIL] completion: %v", err)
			} else {
				log.Printf("[OK]   completion %q (%s)", reply, time.Since(start))
			}
		}
	}

	// Vector index.
	if !cfg.VectorEnabled() {
		log.Println("[SKIP] vector index not configured")
		return
	}
	vecCfg := vector.DefaultConfig()
	vecCfg.APIKey = cfg.PineconeAPIKey
	vecCfg.IndexHost = cfg.PineconeIndexHost
	vecCfg.Namespace = cfg.PineconeNamespace

	client, err := vector.NewClientService(vecCfg, logger)
	if err != nil {
		log.Printf("[FAIL] vector client init: %v", err)
		return
	}
	start = time.Now()
	if err := client.HealthCheck(ctx); err != nil {
		log.Printf("[FAIL] vector index: %v", err)
		return
	}
	log.Printf("[OK]   vector index at %s (%s)", cfg.PineconeIndexHost, time.Since(start))

	svc := vector.NewVectorService(client, vector.NewRetryService(vecCfg, logger), vecCfg, logger)
	count, err := svc.Count(ctx)
	if err != nil {
		log.Printf("[FAIL] vector stats: %v", err)
		return
	}
	log.Printf("[OK]   %d vectors in namespace %q", count, cfg.PineconeNamespace)
}
