// File: internal/services/rag/prompt.go
package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const contextHeader = "Relevant information from previous conversations:"

const promptTemplate = `Context from previous conversations:
%s

Current question: %s

Please answer the current question, using the context above if relevant:`

// PromptBuilder assembles the model input: retrieved context snippets under
// a fixed header, truncated as a whole, wrapped around the live query.
type PromptBuilder struct {
	config    *Config
	retriever Retriever
	logger    Logger
}

func NewPromptBuilder(config *Config, retriever Retriever, logger Logger) *PromptBuilder {
	return &PromptBuilder{
		config:    config,
		retriever: retriever,
		logger:    logger,
	}
}

// BuildContextPrompt enhances a query with retrieved conversation history.
// When nothing relevant is found the query is returned unchanged, so the
// model never sees an empty context header.
func (b *PromptBuilder) BuildContextPrompt(ctx context.Context, query string) string {
	results := b.retriever.Query(ctx, query, b.config.RetrievalTopK)
	if len(results) == 0 {
		return query
	}

	parts := make([]string, 0, len(results)+1)
	parts = append(parts, contextHeader)
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, TruncateText(result.Content, b.config.SnippetMaxChars)))
	}

	// The whole block is truncated after formatting, so the last rendered
	// item may be cut mid-sentence.
	contextText := TruncateText(strings.Join(parts, "\n"), b.config.MaxContextChars)

	b.logger.Debug("built context prompt", "matches", len(results), "context_chars", utf8.RuneCountInString(contextText))
	return fmt.Sprintf(promptTemplate, contextText, query)
}

// TruncateText truncates input to maxLen runes, appending an ellipsis marker
// when anything was cut.
func TruncateText(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	b.WriteString("...")
	return b.String()
}
