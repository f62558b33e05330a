// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"trip-itinerary-ai/internal/domain/ports/adapter"
)

var _ adapter.Provider = (*MultiAIAdapter)(nil)

var ErrNoProvider = errors.New("ai: no provider configured")

type MultiAIAdapter struct {
	defaultProvider string // e.g., "openai" or "gemini"
	byProvider      map[string]adapter.Provider
	modelToProvider map[string]string // model -> provider ("openai" | "gemini")
}

// NewMultiAIAdapter routes each call by model name. Each provider adapter is
// responsible for its own default model.
func NewMultiAIAdapter(
	defaultProvider string,
	byProvider map[string]adapter.Provider,
	modelToProvider map[string]string,
) *MultiAIAdapter {
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
		modelToProvider: modelToProvider,
	}
}

func (m *MultiAIAdapter) resolveProvider(model string) string {
	if p := m.modelToProvider[model]; p != "" {
		return strings.ToLower(p)
	}
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return ProviderGemini
	case strings.HasPrefix(l, "gpt"), strings.HasPrefix(l, "o1"), strings.HasPrefix(l, "o3"):
		return ProviderOpenAI
	default:
		return m.defaultProvider
	}
}

func (m *MultiAIAdapter) pick(model string) adapter.Provider {
	if a := m.byProvider[m.resolveProvider(model)]; a != nil {
		return a
	}
	// last resort: the default provider
	return m.byProvider[m.defaultProvider]
}

func (m *MultiAIAdapter) Generate(ctx context.Context, prompt, model string, temperature float64) (*adapter.GenerateResult, error) {
	a := m.pick(model)
	if a == nil {
		return nil, ErrNoProvider
	}
	return a.Generate(ctx, prompt, model, temperature)
}
