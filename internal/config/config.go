// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabasePath string

	// Completion backend. Key and base URL may point at any
	// OpenAI-compatible endpoint.
	LLMAPIKey  string
	LLMBaseURL string

	// Embedding backend, configured separately so it can live on a
	// different provider than completions.
	EmbeddingAPIKey    string
	EmbeddingBaseURL   string
	EmbeddingModelName string

	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string

	RetrievalTopK   int
	MaxContextChars int

	// ChatModels is a comma-separated list of registry keys to enable;
	// empty enables the built-in table.
	ChatModels  string
	Environment string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "data/chats.db"),

		LLMAPIKey:  getEnv("AI_LLM_KEY", ""),
		LLMBaseURL: getEnv("AI_LLM_BASE_URL", ""),

		EmbeddingAPIKey:  getEnv("AI_EMBEDDING_KEY", ""),
		EmbeddingBaseURL: getEnv("AI_EMBEDDING_BASE_URL", ""),
		// IMPORTANT: this must match the dimension of the vector index.
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-ada-002"),

		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", "smartbot"),

		RetrievalTopK:   getEnvAsInt("RAG_TOPK", 3),
		MaxContextChars: getEnvAsInt("RAG_MAX_CONTEXT_CHARS", 1000),

		ChatModels:  getEnv("CHAT_MODELS", ""),
		Environment: env,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.LLMAPIKey == "" {
			missing = append(missing, "AI_LLM_KEY")
		}
		if cfg.EmbeddingAPIKey == "" {
			missing = append(missing, "AI_EMBEDDING_KEY")
		}
		if cfg.PineconeAPIKey == "" {
			missing = append(missing, "PINECONE_API_KEY")
		}
		if cfg.PineconeIndexHost == "" {
			missing = append(missing, "PINECONE_INDEX_HOST")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// VectorEnabled reports whether the semantic index is configured at all.
// Without it the assistant still runs, retrieval just degrades to
// substring search.
func (c *Config) VectorEnabled() bool {
	return c.PineconeAPIKey != "" && c.PineconeIndexHost != ""
}

// AIEnabled reports whether any generative backend is configured.
func (c *Config) AIEnabled() bool {
	return c.LLMAPIKey != ""
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
