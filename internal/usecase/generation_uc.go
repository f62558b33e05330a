// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"trip-itinerary-ai/internal/domain"
	"trip-itinerary-ai/internal/domain/model"
	"trip-itinerary-ai/internal/domain/ports/adapter"
	"trip-itinerary-ai/internal/domain/ports/repository"
	"trip-itinerary-ai/internal/generation"
	"trip-itinerary-ai/internal/infra/metrics"
)

// Compile-time check
var _ GenerationUseCase = (*generationUC)(nil)

const admissionLockTTL = 5 * time.Second

type GenerationUseCase interface {
	// Enqueue admits a job for the draft and, in sync mode, runs it before returning.
	Enqueue(ctx context.Context, userID string, req EnqueueRequest) (*EnqueueResult, error)
	// Run executes a QUEUED job to a terminal status.
	Run(ctx context.Context, jobID string) (*model.GenerationJob, error)
	// RunNext claims the oldest QUEUED job and runs it. It returns
	// domain.ErrNotFound when the queue is empty.
	RunNext(ctx context.Context) (*model.GenerationJob, error)
	Status(ctx context.Context, userID, jobID string) (*JobStatus, error)
	Audits(ctx context.Context, userID, jobID string) ([]*model.AIGenerationAudit, error)
	// RecoverStuck fails RUNNING jobs started, and QUEUED jobs created, before
	// now-olderThan.
	RecoverStuck(ctx context.Context, olderThan time.Duration) (int, error)
}

type EnqueueRequest struct {
	DraftID     string
	ItineraryID *string
	TargetDays  []int
}

type EnqueueResult struct {
	JobID         string
	Status        model.GenerationJobStatus
	CorrelationID string
}

type JobStatus struct {
	JobID       string
	Status      model.GenerationJobStatus
	RetryCount  int
	PartialDays []int
	Error       *string
}

// GenerationOptions configures the use case. Async leaves admitted jobs QUEUED
// for the background processor.
type GenerationOptions struct {
	Pipeline generation.Config
	Async    bool
	Dev      bool
}

type generationUC struct {
	drafts   repository.DraftRepository
	jobs     repository.GenerationJobRepository
	audits   repository.AuditRepository
	tm       repository.TransactionManager
	provider adapter.Provider
	locker   repository.Locker // optional
	opts     GenerationOptions
	tracer   trace.Tracer
	log      *zerolog.Logger
	now      func() time.Time
}

func NewGenerationUseCase(
	drafts repository.DraftRepository,
	jobs repository.GenerationJobRepository,
	audits repository.AuditRepository,
	tm repository.TransactionManager,
	provider adapter.Provider,
	locker repository.Locker,
	opts GenerationOptions,
	logger *zerolog.Logger,
) *generationUC {
	opts.Pipeline = opts.Pipeline.WithDefaults()
	l := logger.With().Str("component", "generation").Logger()
	return &generationUC{
		drafts:   drafts,
		jobs:     jobs,
		audits:   audits,
		tm:       tm,
		provider: provider,
		locker:   locker,
		opts:     opts,
		tracer:   otel.Tracer("trip-itinerary-ai/generation"),
		log:      &l,
		now:      time.Now,
	}
}

func (u *generationUC) Enqueue(ctx context.Context, userID string, req EnqueueRequest) (*EnqueueResult, error) {
	draft, err := u.drafts.FindByID(ctx, repository.NoTX, req.DraftID)
	if err != nil {
		return nil, err
	}
	if draft.UserID != userID {
		return nil, domain.ErrForbidden
	}

	targetDays := model.NormalizeDays(req.TargetDays)
	dayCount := draft.DayCount()
	for _, d := range targetDays {
		if d < 0 || d >= dayCount {
			return nil, fmt.Errorf("%w: target day %d outside [0, %d)", domain.ErrInvalidArgument, d, dayCount)
		}
	}

	job, err := model.NewGenerationJob(draft.ID, userID, req.ItineraryID, targetDays)
	if err != nil {
		return nil, err
	}
	if err := u.admit(ctx, job); err != nil {
		return nil, err
	}
	u.log.Info().Str("job_id", job.ID).Str("draft_id", job.DraftID).Str("correlation_id", job.CorrelationID).
		Ints("target_days", job.TargetDays).Msg("generation job queued")

	if !u.opts.Async {
		finished, err := u.Run(ctx, job.ID)
		if err != nil {
			// Nothing else runs a sync job, so it must not stay active.
			if _, aerr := u.abandon(ctx, job.ID); aerr != nil && !errors.Is(aerr, domain.ErrInvalidTransition) {
				u.log.Error().Err(aerr).Str("job_id", job.ID).Msg("failed to abandon job after run error")
			}
			return nil, err
		}
		job = finished
	}
	return &EnqueueResult{JobID: job.ID, Status: job.Status, CorrelationID: job.CorrelationID}, nil
}

// admit is the concurrency gate: active-job check and insert in one
// transaction under a row lock on the draft. The unique partial index on
// active jobs backs it up.
func (u *generationUC) admit(ctx context.Context, job *model.GenerationJob) error {
	if u.locker != nil {
		key := "genjob:admit:" + job.DraftID
		token, err := u.locker.TryLock(ctx, key, admissionLockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockNotAcquired) {
				metrics.IncGateConflict()
				return domain.ErrJobAlreadyRunning
			}
			return err
		}
		defer func() {
			if err := u.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
				u.log.Warn().Err(err).Str("key", key).Msg("failed to release admission lock")
			}
		}()
	}

	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.drafts.LockByID(ctx, tx, job.DraftID); err != nil {
			return err
		}
		active, err := u.jobs.FindActive(ctx, tx, job.DraftID, job.ItineraryID)
		switch {
		case err == nil && active != nil:
			return domain.ErrJobAlreadyRunning
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}
		return u.jobs.Create(ctx, tx, job)
	})
	if errors.Is(err, domain.ErrJobAlreadyRunning) {
		metrics.IncGateConflict()
	}
	return err
}

func (u *generationUC) Status(ctx context.Context, userID, jobID string) (*JobStatus, error) {
	job, err := u.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	return &JobStatus{
		JobID:       job.ID,
		Status:      job.Status,
		RetryCount:  job.RetryCount,
		PartialDays: job.PartialDays,
		Error:       job.Error,
	}, nil
}

func (u *generationUC) Audits(ctx context.Context, userID, jobID string) ([]*model.AIGenerationAudit, error) {
	job, err := u.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	return u.audits.ListByCorrelation(ctx, repository.NoTX, job.CorrelationID)
}

func (u *generationUC) ownedJob(ctx context.Context, userID, jobID string) (*model.GenerationJob, error) {
	job, err := u.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return job, nil
}

func (u *generationUC) RecoverStuck(ctx context.Context, olderThan time.Duration) (int, error) {
	stuck, err := u.jobs.ListStuck(ctx, repository.NoTX, u.now().Add(-olderThan), 100)
	if err != nil {
		return 0, err
	}
	recovered := 0
	for _, s := range stuck {
		job, err := u.abandon(ctx, s.ID)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidTransition) {
				u.log.Error().Err(err).Str("job_id", s.ID).Msg("failed to recover stuck job")
			}
			continue
		}
		recovered++
		u.log.Warn().Str("job_id", job.ID).Str("correlation_id", job.CorrelationID).
			Str("from", string(job.PriorStatus())).Msg("stuck generation job abandoned")
	}
	metrics.AddJobsAbandoned(recovered)
	return recovered, nil
}

// abandon fails an active job with AI_JOB_ABANDONED, re-reading it inside the
// transaction that writes its final audit row.
func (u *generationUC) abandon(ctx context.Context, jobID string) (*model.GenerationJob, error) {
	var job *model.GenerationJob
	err := u.tm.WithTx(context.WithoutCancel(ctx), pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if job, err = u.jobs.FindByID(ctx, tx, jobID); err != nil {
			return err
		}
		if err := job.Abandon(model.ErrorCodeJobAbandoned, u.now()); err != nil {
			return err
		}
		if err := u.jobs.Finish(ctx, tx, job); err != nil {
			return err
		}
		row := model.NewAudit(job, job.RetryCount, "")
		row.ErrorMessage = job.Error
		return u.audits.Append(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	metrics.IncGenerationJobFinished(string(job.Status))
	return job, nil
}
