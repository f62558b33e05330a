package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StuckRecoverer fails RUNNING or QUEUED jobs older than a cutoff.
type StuckRecoverer interface {
	RecoverStuck(ctx context.Context, olderThan time.Duration) (int, error)
}

// StuckJobSweeper periodically abandons jobs whose runner died mid-flight.
type StuckJobSweeper struct {
	interval   time.Duration
	stuckAfter time.Duration
	uc         StuckRecoverer
	log        *zerolog.Logger
}

func NewStuckJobSweeper(interval, stuckAfter time.Duration, uc StuckRecoverer, logger *zerolog.Logger) *StuckJobSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "StuckJobSweeper").Logger()
	return &StuckJobSweeper{interval: interval, stuckAfter: stuckAfter, uc: uc, log: &l}
}

func (w *StuckJobSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("stuck_after", w.stuckAfter).Msg("starting stuck job sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping stuck job sweeper")
			return nil
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single recovery pass and returns the number of jobs failed.
func (w *StuckJobSweeper) SweepOnce(ctx context.Context) int {
	n, err := w.uc.RecoverStuck(ctx, w.stuckAfter)
	if err != nil {
		w.log.Error().Err(err).Msg("stuck job sweep error")
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("stuck generation jobs abandoned")
	}
	return n
}
