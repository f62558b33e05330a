package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"trip-itinerary-ai/internal/domain"
	"trip-itinerary-ai/internal/domain/model"
)

// JobRunner claims and runs the oldest queued generation job.
type JobRunner interface {
	RunNext(ctx context.Context) (*model.GenerationJob, error)
}

// GenerationProcessor drains QUEUED generation jobs in async mode.
type GenerationProcessor struct {
	runner   JobRunner
	interval time.Duration
	log      *zerolog.Logger
}

func NewGenerationProcessor(runner JobRunner, interval time.Duration, logger *zerolog.Logger) *GenerationProcessor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	l := logger.With().Str("component", "GenerationProcessor").Logger()
	return &GenerationProcessor{runner: runner, interval: interval, log: &l}
}

// Start polls until ctx is done. Each tick submits one draining task to pool.
func (p *GenerationProcessor) Start(ctx context.Context, pool *Pool) error {
	p.log.Info().Dur("interval", p.interval).Msg("generation processor started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("generation processor stopping")
			return nil
		case <-ticker.C:
			if err := pool.Submit(p.drain); err != nil && !errors.Is(err, ErrQueueFull) {
				p.log.Error().Err(err).Msg("submit failed")
			}
		}
	}
}

// drain runs queued jobs until the queue is empty or ctx ends.
func (p *GenerationProcessor) drain(ctx context.Context) error {
	for ctx.Err() == nil {
		job, err := p.runner.RunNext(ctx)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil
		case err != nil:
			return err
		}
		p.log.Debug().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("queued job processed")
	}
	return nil
}
