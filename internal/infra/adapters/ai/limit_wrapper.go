package ai

import (
	"context"

	"golang.org/x/sync/semaphore"

	"trip-itinerary-ai/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.Provider = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.Provider
	sem   *semaphore.Weighted
}

// NewLimitedAI caps the number of in-flight provider calls across all jobs.
func NewLimitedAI(inner adapter.Provider, maxConcurrent int) adapter.Provider {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

func (l *limitedAI) Generate(ctx context.Context, prompt, model string, temperature float64) (*adapter.GenerateResult, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.Generate(ctx, prompt, model, temperature)
}
