// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to OpenAI-compatible endpoints. The embedding and
// completion clients are configured separately so they can point at
// different backends.
type OpenAIProvider struct {
	config          *Config
	embeddingClient *openai.Client
	llmClient       *openai.Client
}

func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	embeddingConfig := openai.DefaultConfig(config.EmbeddingKey)
	if config.EmbeddingBaseURL != "" {
		embeddingConfig.BaseURL = config.EmbeddingBaseURL
	}
	llmConfig := openai.DefaultConfig(config.LLMKey)
	if config.LLMBaseURL != "" {
		llmConfig.BaseURL = config.LLMBaseURL
	}

	return &OpenAIProvider{
		config:          config,
		embeddingClient: openai.NewClientWithConfig(embeddingConfig),
		llmClient:       openai.NewClientWithConfig(llmConfig),
	}, nil
}

func (p *OpenAIProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	var embedding []float32
	err := p.retryWithTimeout(ctx, func(ctx context.Context) error {
		req := openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
		}
		resp, err := p.embeddingClient.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return errors.New("embedding API returned empty response")
		}
		embedding = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, NewProviderError("embedding", "failed to create embedding", err)
	}
	return embedding, nil
}

func (p *OpenAIProvider) GetCompletion(ctx context.Context, model, prompt string) (string, error) {
	var reply string
	err := p.retryWithTimeout(ctx, func(ctx context.Context) error {
		req := openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: p.config.Temperature,
			TopP:        p.config.TopP,
			MaxTokens:   p.config.MaxTokens,
		}
		resp, err := p.llmClient.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return errors.New("language model returned empty reply")
		}
		reply = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", NewProviderError("completion", "failed to create completion", err)
	}
	return reply, nil
}

func (p *OpenAIProvider) retryWithTimeout(parent context.Context, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(parent, p.config.Timeout)
		err := call(ctx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if parent.Err() != nil {
			return lastErr
		}
		log.Printf("[AIProvider] Retry %d/%d failed: %v", attempt, p.config.MaxRetries, err)
		if attempt < p.config.MaxRetries {
			time.Sleep(time.Duration(attempt) * p.config.RetryDelay)
		}
	}
	return lastErr
}
