// File: internal/services/model/manager.go
package model

import (
	"context"
	"strings"
	"sync"

	"github.com/smartbot-ai/smartbot/internal/services/ai"
)

// Manager owns the model registry and routes generation requests to the
// currently selected responder, falling back to the deterministic
// responder whenever generation fails.
type Manager struct {
	mu       sync.RWMutex
	specs    map[string]Spec
	order    []string
	services map[string]Service
	fallback *FallbackService
	current  string
	logger   Logger
}

// NewManager builds the registry from the given specs. Entries whose
// backing service cannot be constructed are logged and omitted; the
// fallback responder is always registered.
func NewManager(provider ai.CompletionProvider, specs []Spec, logger Logger) *Manager {
	m := &Manager{
		specs:    make(map[string]Spec),
		services: make(map[string]Service),
		fallback: NewFallbackService(),
		logger:   logger,
	}

	for _, spec := range specs {
		if spec.Key == "" || spec.Key == FallbackName {
			continue
		}
		svc, err := NewOpenAIModel(provider, spec)
		if err != nil {
			if logger != nil {
				logger.Warn("Skipping model entry", "model", spec.Key, "error", err.Error())
			}
			continue
		}
		m.specs[spec.Key] = spec
		m.services[spec.Key] = svc
		m.order = append(m.order, spec.Key)
	}

	if len(m.order) > 0 {
		m.current = m.order[0]
	} else {
		m.current = FallbackName
	}
	if logger != nil {
		logger.Info("Model registry initialized", "models", len(m.order), "current", m.current)
	}
	return m
}

// Current returns the name of the selected model.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SetCurrent switches the selected model. Unknown names are rejected and
// the selection is left unchanged.
func (m *Manager) SetCurrent(name string) bool {
	name = strings.TrimSpace(name)
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == FallbackName {
		m.current = FallbackName
		return true
	}
	if _, ok := m.services[name]; ok {
		m.current = name
		return true
	}
	if m.logger != nil {
		m.logger.Warn("Rejected unknown model selection", "model", name)
	}
	return false
}

// GenerateResponse produces a reply for the prompt. It never returns an
// empty string: any failure of the selected model degrades to the
// deterministic fallback responder.
func (m *Manager) GenerateResponse(ctx context.Context, prompt, contextText string) string {
	m.mu.RLock()
	name := m.current
	svc := m.services[name]
	m.mu.RUnlock()

	if name != FallbackName && svc != nil && svc.Available() {
		reply, err := svc.Generate(ctx, prompt, contextText)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply
		}
		if err != nil && m.logger != nil {
			m.logger.Error("Model generation failed, using fallback", "model", name, "error", err.Error())
		}
	}

	reply, _ := m.fallback.Generate(ctx, prompt, contextText)
	return reply
}

// AvailableModels lists every registry entry, fallback included.
func (m *Manager) AvailableModels() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]Info, 0, len(m.order)+1)
	for _, key := range m.order {
		infos = append(infos, Info{Spec: m.specs[key], Current: key == m.current})
	}
	infos = append(infos, Info{
		Spec: Spec{
			Key:         FallbackName,
			DisplayName: "Rule-Based Fallback",
			Description: "Deterministic pattern-matching responder",
			Mode:        "rule-based",
		},
		Current: m.current == FallbackName,
	})
	return infos
}

// Status reports per-model availability keyed by registry name.
func (m *Manager) Status() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]bool, len(m.services)+1)
	for key, svc := range m.services {
		status[key] = svc.Available()
	}
	status[FallbackName] = true
	return status
}
