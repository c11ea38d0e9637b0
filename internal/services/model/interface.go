// File: internal/services/model/interface.go
package model

import "context"

// FallbackName is the reserved registry name of the deterministic responder.
const FallbackName = "fallback"

// Logger defines the logging interface used by model dispatch.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Service is the single contract every responder satisfies: generative
// models and the deterministic fallback alike.
type Service interface {
	Generate(ctx context.Context, prompt, contextText string) (string, error)
	Available() bool
}

// Spec describes one configurable model entry.
type Spec struct {
	Key         string `json:"key"`
	DisplayName string `json:"name"`
	Description string `json:"description"`
	Mode        string `json:"generation_mode"`
	ModelID     string `json:"model_id"`
}

// Info is the model-selection surface consumed by the UI layer.
type Info struct {
	Spec
	Current bool `json:"current"`
}

// DefaultSpecs is the built-in model table.
func DefaultSpecs() []Spec {
	return []Spec{
		{
			Key:         "flan-t5-base",
			DisplayName: "Google FLAN-T5 Base",
			Description: "Versatile instruction-following model",
			Mode:        "text2text-generation",
			ModelID:     "google/flan-t5-base",
		},
		{
			Key:         "flan-t5-small",
			DisplayName: "Google FLAN-T5 Small",
			Description: "Faster, smaller version",
			Mode:        "text2text-generation",
			ModelID:     "google/flan-t5-small",
		},
		{
			Key:         "dialogpt",
			DisplayName: "Microsoft DialoGPT",
			Description: "Conversational AI model",
			Mode:        "text-generation",
			ModelID:     "microsoft/DialoGPT-medium",
		},
	}
}
