// File: internal/usecase/generation_runner.go
package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"trip-itinerary-ai/internal/domain/model"
	"trip-itinerary-ai/internal/domain/ports/repository"
	"trip-itinerary-ai/internal/generation"
	"trip-itinerary-ai/internal/infra/logging"
	"trip-itinerary-ai/internal/infra/metrics"
)

func (u *generationUC) Run(ctx context.Context, jobID string) (*model.GenerationJob, error) {
	var (
		job    *model.GenerationJob
		prompt string
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if job, err = u.jobs.FindByID(ctx, tx, jobID); err != nil {
			return err
		}
		prompt, err = u.start(ctx, tx, job)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u.execute(ctx, job, prompt)
}

func (u *generationUC) RunNext(ctx context.Context) (*model.GenerationJob, error) {
	var (
		job    *model.GenerationJob
		prompt string
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if job, err = u.jobs.FetchQueued(ctx, tx); err != nil {
			return err
		}
		prompt, err = u.start(ctx, tx, job)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u.execute(ctx, job, prompt)
}

// start builds the base prompt and moves the job to RUNNING inside tx.
func (u *generationUC) start(ctx context.Context, tx repository.Tx, job *model.GenerationJob) (string, error) {
	draft, err := u.drafts.FindByID(ctx, tx, job.DraftID)
	if err != nil {
		return "", err
	}
	prompt := generation.BuildPrompt(draft, job.TargetDays)
	cfg := u.opts.Pipeline
	if err := job.Start(cfg.Model, cfg.Temperature, generation.PromptHash(prompt), u.now()); err != nil {
		return "", err
	}
	if err := u.jobs.MarkRunning(ctx, tx, job); err != nil {
		return "", err
	}
	return prompt, nil
}

// execute is the retry controller. Every attempt that does not end the job
// appends one audit row; the terminal transition and its audit row share a
// transaction.
func (u *generationUC) execute(ctx context.Context, job *model.GenerationJob, basePrompt string) (*model.GenerationJob, error) {
	ctx = logging.WithJobID(logging.WithCorrelationID(ctx, job.CorrelationID), job.ID)
	log := logging.With(ctx, u.log)
	ctx, span := u.tracer.Start(ctx, "generation.job")
	span.SetAttributes(
		attribute.String("job.id", job.ID),
		attribute.String("job.correlation_id", job.CorrelationID),
		attribute.String("ai.model", job.Model),
	)
	defer span.End()

	cfg := u.opts.Pipeline
	maxAttempts := cfg.Backoff.MaxAttempts()
	var (
		last       *generation.Attempt
		lastErr    string
		repairHint string
	)

loop:
	for i := 0; i < maxAttempts; i++ {
		prompt := basePrompt
		if repairHint != "" {
			prompt = generation.BuildRepairPrompt(basePrompt, repairHint)
		}

		actx, aspan := u.tracer.Start(ctx, "generation.attempt")
		a := generation.Execute(actx, u.provider, i, prompt, job.Model, job.Temperature)
		aspan.SetAttributes(attribute.Int("attempt", i), attribute.String("outcome", string(a.Outcome)))
		aspan.End()
		last = a

		metrics.IncGenerationAttempt(string(a.Outcome))
		log.Info().Int("attempt", i).Str("outcome", string(a.Outcome)).Dur("duration", a.Duration).
			Str("model", job.Model).Str("response", logging.Redact(a.RawResponse, u.opts.Dev)).Msg("generation attempt")

		if a.Outcome == generation.OutcomeSuccess {
			return u.succeed(ctx, job, a)
		}

		// Provider failures stay in the audit trail. The job only reports
		// parse and schema errors, or AI_RETRY_EXHAUSTED.
		if hint := a.RepairHint(); hint != "" {
			repairHint = hint
			lastErr = hint
		}
		if err := u.appendAttempt(ctx, job, a, a.ErrorMessage()); err != nil {
			span.RecordError(err)
			log.Error().Err(err).Int("attempt", i).Msg("failed to append attempt audit")
			break loop
		}

		if !a.Retryable || i == maxAttempts-1 {
			break loop
		}
		if err := cfg.Sleep(ctx, cfg.Backoff.Delay(i)); err != nil {
			log.Warn().Err(err).Int("attempt", i).Msg("backoff interrupted")
			break loop
		}
	}

	span.SetStatus(codes.Error, "generation failed")
	return u.fail(ctx, job, last, lastErr)
}

func (u *generationUC) appendAttempt(ctx context.Context, job *model.GenerationJob, a *generation.Attempt, msg string) error {
	row := model.NewAudit(job, a.Index, a.Prompt)
	row.RawRequest = a.Request
	row.RawResponse = a.RawResponse
	row.ParsedFragment = a.ParsedFragment()
	row.ErrorMessage = &msg
	if err := u.audits.Append(context.WithoutCancel(ctx), repository.NoTX, row); err != nil {
		return fmt.Errorf("append attempt audit: %w", err)
	}
	return nil
}

func (u *generationUC) succeed(ctx context.Context, job *model.GenerationJob, a *generation.Attempt) (*model.GenerationJob, error) {
	vr := a.Validation
	code := ""
	if !vr.AllDaysValid {
		code = model.ErrorCodePartialSuccess
		metrics.AddPartialDaysDropped(vr.Submitted - len(vr.ValidDays))
	}
	result, err := json.Marshal(vr.Itinerary())
	if err != nil {
		return nil, fmt.Errorf("marshal itinerary: %w", err)
	}
	if err := job.Succeed(vr.PartialDays(), a.Index+1, result, code, u.now()); err != nil {
		return nil, err
	}

	row := model.NewAudit(job, a.Index, a.Prompt)
	row.RawRequest = a.Request
	row.RawResponse = a.RawResponse
	row.ParsedFragment = a.ParsedFragment()
	row.ErrorMessage = job.Error
	if err := u.finalize(ctx, job, row); err != nil {
		return nil, err
	}
	u.log.Info().Str("job_id", job.ID).Str("status", string(job.Status)).Ints("partial_days", job.PartialDays).
		Int("retry_count", job.RetryCount).Msg("generation job finished")
	return job, nil
}

func (u *generationUC) fail(ctx context.Context, job *model.GenerationJob, last *generation.Attempt, lastErr string) (*model.GenerationJob, error) {
	attempts, prompt := 0, ""
	if last != nil {
		attempts, prompt = last.Index+1, last.Prompt
	}
	if err := job.Fail(lastErr, attempts, u.now()); err != nil {
		return nil, err
	}
	row := model.NewAudit(job, max(attempts-1, 0), prompt)
	row.ErrorMessage = job.Error
	if err := u.finalize(ctx, job, row); err != nil {
		return nil, err
	}
	u.log.Warn().Str("job_id", job.ID).Str("error", *job.Error).Int("retry_count", job.RetryCount).
		Msg("generation job failed")
	return job, nil
}

func (u *generationUC) finalize(ctx context.Context, job *model.GenerationJob, row *model.AIGenerationAudit) error {
	ctx = context.WithoutCancel(ctx)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.jobs.Finish(ctx, tx, job); err != nil {
			return err
		}
		return u.audits.Append(ctx, tx, row)
	})
	if err != nil {
		return fmt.Errorf("finalize job %s: %w", job.ID, err)
	}
	metrics.IncGenerationJobFinished(string(job.Status))
	return nil
}
