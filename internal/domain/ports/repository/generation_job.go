package repository

import (
	"context"
	"time"

	"trip-itinerary-ai/internal/domain/model"
)

type GenerationJobRepository interface {
	// Create inserts a QUEUED job. It returns domain.ErrJobAlreadyRunning when an
	// active job already exists for the draft or itinerary.
	Create(ctx context.Context, tx Tx, job *model.GenerationJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.GenerationJob, error)
	// FindActive returns the QUEUED or RUNNING job for the draft, or for the
	// itinerary when itineraryID is set.
	FindActive(ctx context.Context, tx Tx, draftID string, itineraryID *string) (*model.GenerationJob, error)
	// MarkRunning persists a QUEUED -> RUNNING transition. It returns
	// domain.ErrInvalidTransition when the stored job is no longer QUEUED.
	MarkRunning(ctx context.Context, tx Tx, job *model.GenerationJob) error
	// Finish persists the terminal transition from job.PriorStatus(). It returns
	// domain.ErrInvalidTransition when the stored job has moved on.
	Finish(ctx context.Context, tx Tx, job *model.GenerationJob) error
	// FetchQueued locks the oldest QUEUED job, skipping rows locked by other workers.
	FetchQueued(ctx context.Context, tx Tx) (*model.GenerationJob, error)
	// ListStuck returns RUNNING jobs started before cutoff and QUEUED jobs
	// created before it.
	ListStuck(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.GenerationJob, error)
}
