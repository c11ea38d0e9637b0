// File: internal/services/model/openai_model.go
package model

import (
	"context"
	"errors"
	"strings"

	"github.com/smartbot-ai/smartbot/internal/services/ai"
)

// OpenAIModel is a generative responder backed by a chat-completion
// endpoint. One instance exists per configured model entry.
type OpenAIModel struct {
	spec     Spec
	provider ai.CompletionProvider
}

func NewOpenAIModel(provider ai.CompletionProvider, spec Spec) (*OpenAIModel, error) {
	if provider == nil {
		return nil, errors.New("completion provider is required")
	}
	if spec.ModelID == "" {
		return nil, errors.New("model ID is required")
	}
	return &OpenAIModel{spec: spec, provider: provider}, nil
}

func (m *OpenAIModel) Generate(ctx context.Context, prompt, contextText string) (string, error) {
	fullPrompt := "Question: " + prompt + "\nAnswer:"
	if contextText != "" {
		fullPrompt = "Context: " + contextText + "\n\nQuestion: " + prompt + "\nAnswer:"
	}

	reply, err := m.provider.GetCompletion(ctx, m.spec.ModelID, fullPrompt)
	if err != nil {
		return "", err
	}

	// Some completion backends echo the prompt scaffold back.
	if idx := strings.LastIndex(reply, "Answer:"); idx >= 0 {
		reply = strings.TrimSpace(reply[idx+len("Answer:"):])
	}
	if reply == "" {
		return "", errors.New("model returned empty reply")
	}
	return reply, nil
}

func (m *OpenAIModel) Available() bool {
	return m.provider != nil
}
