// File: internal/services/rag/prompt_test.go
package rag

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetriever struct {
	results []ContextResult
}

func (s *stubRetriever) Query(_ context.Context, _ string, _ int) []ContextResult {
	return s.results
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func TestBuildContextPromptNoMatches(t *testing.T) {
	b := NewPromptBuilder(DefaultConfig(), &stubRetriever{}, nopLogger{})

	query := "What did we discuss about Go?"
	assert.Equal(t, query, b.BuildContextPrompt(context.Background(), query))
}

func TestBuildContextPromptIncludesNumberedSnippets(t *testing.T) {
	retriever := &stubRetriever{results: []ContextResult{
		{Content: "Go uses goroutines for concurrency", RelevanceScore: 0.9, Source: SourceVectorSearch},
		{Content: "Channels synchronize goroutines", RelevanceScore: 0.8, Source: SourceVectorSearch},
	}}
	b := NewPromptBuilder(DefaultConfig(), retriever, nopLogger{})

	prompt := b.BuildContextPrompt(context.Background(), "tell me about concurrency")

	assert.Contains(t, prompt, "Relevant information from previous conversations:")
	assert.Contains(t, prompt, "1. Go uses goroutines for concurrency")
	assert.Contains(t, prompt, "2. Channels synchronize goroutines")
	assert.Contains(t, prompt, "Current question: tell me about concurrency")
	assert.True(t, strings.HasSuffix(prompt, "Please answer the current question, using the context above if relevant:"))
}

func TestBuildContextPromptTruncatesLongSnippets(t *testing.T) {
	long := strings.Repeat("a", 500)
	retriever := &stubRetriever{results: []ContextResult{{Content: long}}}
	cfg := DefaultConfig()
	b := NewPromptBuilder(cfg, retriever, nopLogger{})

	prompt := b.BuildContextPrompt(context.Background(), "q")

	assert.Contains(t, prompt, "1. "+strings.Repeat("a", cfg.SnippetMaxChars)+"...")
	assert.NotContains(t, prompt, strings.Repeat("a", cfg.SnippetMaxChars+1))
}

func TestBuildContextPromptCapsWholeBlock(t *testing.T) {
	retriever := &stubRetriever{results: []ContextResult{
		{Content: strings.Repeat("x", 400)},
		{Content: strings.Repeat("y", 400)},
		{Content: strings.Repeat("z", 400)},
		{Content: strings.Repeat("w", 400)},
		{Content: strings.Repeat("v", 400)},
		{Content: strings.Repeat("u", 400)},
	}}
	cfg := DefaultConfig()
	b := NewPromptBuilder(cfg, retriever, nopLogger{})

	prompt := b.BuildContextPrompt(context.Background(), "q")

	// The rendered block between the leading template line and the query
	// line is the truncated context.
	start := strings.Index(prompt, "\n") + 1
	end := strings.Index(prompt, "\n\nCurrent question:")
	require.Greater(t, end, start)
	block := prompt[start:end]
	assert.Equal(t, cfg.MaxContextChars+len("..."), utf8.RuneCountInString(block))
	assert.True(t, strings.HasSuffix(block, "..."))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "abc...", TruncateText("abcdef", 3))
	assert.Equal(t, "", TruncateText("", 10))
	assert.Equal(t, "", TruncateText("abc", 0))

	// Rune-aware: multibyte input is not split mid-character.
	assert.Equal(t, "héllo...", TruncateText("héllo wörld", 5))
}
