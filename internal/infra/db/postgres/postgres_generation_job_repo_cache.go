package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"trip-itinerary-ai/internal/domain/model"
	"trip-itinerary-ai/internal/domain/ports/repository"
	"trip-itinerary-ai/internal/infra/metrics"
	red "trip-itinerary-ai/internal/infra/redis"
)

var _ repository.GenerationJobRepository = (*generationJobRepoCacheDecorator)(nil)

// generationJobRepoCacheDecorator caches terminal jobs for status polling.
// Active jobs are always read from the database.
type generationJobRepoCacheDecorator struct {
	inner repository.GenerationJobRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewGenerationJobRepoCacheDecorator(inner repository.GenerationJobRepository, cache red.RedisClient, ttl time.Duration, log *zerolog.Logger) repository.GenerationJobRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &generationJobRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: log}
}

func jobCacheKey(id string) string { return "generation_job:id:" + id }

func (d *generationJobRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.GenerationJob, error) {
	// Transactional reads must see the locked row.
	if inTx(tx) {
		return d.inner.FindByID(ctx, tx, id)
	}

	val, err := d.cache.Get(ctx, jobCacheKey(id))
	if err == nil {
		var job model.GenerationJob
		if json.Unmarshal([]byte(val), &job) == nil {
			metrics.IncCacheRequest("generation_job", "hit")
			return &job, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		d.log.Warn().Err(err).Str("job_id", id).Msg("generation job cache read failed")
	}

	metrics.IncCacheRequest("generation_job", "miss")
	job, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		if b, err := json.Marshal(job); err == nil {
			_ = d.cache.Set(ctx, jobCacheKey(id), b, d.ttl)
		}
	}
	return job, nil
}

func (d *generationJobRepoCacheDecorator) Finish(ctx context.Context, tx repository.Tx, job *model.GenerationJob) error {
	_ = d.cache.Del(ctx, jobCacheKey(job.ID))
	return d.inner.Finish(ctx, tx, job)
}

// Pass-through methods that don't need caching
func (d *generationJobRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, job *model.GenerationJob) error {
	return d.inner.Create(ctx, tx, job)
}

func (d *generationJobRepoCacheDecorator) FindActive(ctx context.Context, tx repository.Tx, draftID string, itineraryID *string) (*model.GenerationJob, error) {
	return d.inner.FindActive(ctx, tx, draftID, itineraryID)
}

func (d *generationJobRepoCacheDecorator) MarkRunning(ctx context.Context, tx repository.Tx, job *model.GenerationJob) error {
	return d.inner.MarkRunning(ctx, tx, job)
}

func (d *generationJobRepoCacheDecorator) FetchQueued(ctx context.Context, tx repository.Tx) (*model.GenerationJob, error) {
	return d.inner.FetchQueued(ctx, tx)
}

func (d *generationJobRepoCacheDecorator) ListStuck(ctx context.Context, tx repository.Tx, startedBefore time.Time, limit int) ([]*model.GenerationJob, error) {
	return d.inner.ListStuck(ctx, tx, startedBefore, limit)
}
