package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trip-itinerary-ai/internal/domain"
	"trip-itinerary-ai/internal/domain/model"
	"trip-itinerary-ai/internal/domain/ports/repository"
)

var _ repository.GenerationJobRepository = (*generationJobRepo)(nil)

type generationJobRepo struct{ pool *pgxpool.Pool }

func NewGenerationJobRepo(pool *pgxpool.Pool) *generationJobRepo {
	return &generationJobRepo{pool: pool}
}

const jobColumns = `id, draft_id, user_id, itinerary_id, correlation_id, status, target_days, retry_count, partial_days,
  model, temperature, prompt_hash, result, error, started_at, finished_at, created_at, updated_at`

func (r *generationJobRepo) Create(ctx context.Context, tx repository.Tx, j *model.GenerationJob) error {
	const q = `
INSERT INTO generation_jobs (` + jobColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18);`
	_, err := execSQL(ctx, r.pool, tx, q, j.ID, j.DraftID, j.UserID, j.ItineraryID, j.CorrelationID, string(j.Status),
		toInt32s(j.TargetDays), j.RetryCount, toInt32s(j.PartialDays), j.Model, j.Temperature, j.PromptHash,
		jsonOrNil(j.Result), j.Error, j.StartedAt, j.FinishedAt, j.CreatedAt, j.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrJobAlreadyRunning
	}
	return err
}

func (r *generationJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.GenerationJob, error) {
	q := `SELECT ` + jobColumns + ` FROM generation_jobs WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *generationJobRepo) FindActive(ctx context.Context, tx repository.Tx, draftID string, itineraryID *string) (*model.GenerationJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM generation_jobs
WHERE status IN ('QUEUED','RUNNING') AND (draft_id=$1 OR ($2::uuid IS NOT NULL AND itinerary_id=$2::uuid))
ORDER BY created_at
LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, draftID, itineraryID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *generationJobRepo) MarkRunning(ctx context.Context, tx repository.Tx, j *model.GenerationJob) error {
	const q = `
UPDATE generation_jobs SET
  status=$2, model=$3, temperature=$4, prompt_hash=$5, target_days=$6, started_at=$7, updated_at=$8
WHERE id=$1 AND status='QUEUED';`
	tag, err := execSQL(ctx, r.pool, tx, q, j.ID, string(j.Status), j.Model, j.Temperature, j.PromptHash,
		toInt32s(j.TargetDays), j.StartedAt, j.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *generationJobRepo) Finish(ctx context.Context, tx repository.Tx, j *model.GenerationJob) error {
	const q = `
UPDATE generation_jobs SET
  status=$2, retry_count=$3, partial_days=$4, result=$5, error=$6, finished_at=$7, updated_at=$8
WHERE id=$1 AND status=$9;`
	tag, err := execSQL(ctx, r.pool, tx, q, j.ID, string(j.Status), j.RetryCount, toInt32s(j.PartialDays),
		jsonOrNil(pgJSON(j.Result)), pgTextPtr(j.Error), j.FinishedAt, j.UpdatedAt, string(j.PriorStatus()))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *generationJobRepo) FetchQueued(ctx context.Context, tx repository.Tx) (*model.GenerationJob, error) {
	if !inTx(tx) {
		return nil, domain.ErrInvalidExecContext
	}
	const q = `SELECT ` + jobColumns + ` FROM generation_jobs
WHERE status = 'QUEUED'
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *generationJobRepo) ListStuck(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.GenerationJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM generation_jobs
WHERE (status = 'RUNNING' AND started_at < $1) OR (status = 'QUEUED' AND created_at < $1)
ORDER BY COALESCE(started_at, created_at)
LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.GenerationJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func scanJob(row pgx.Row) (*model.GenerationJob, error) {
	var (
		j           model.GenerationJob
		status      string
		targetDays  []int32
		partialDays []int32
		result      []byte
	)
	if err := row.Scan(&j.ID, &j.DraftID, &j.UserID, &j.ItineraryID, &j.CorrelationID, &status, &targetDays,
		&j.RetryCount, &partialDays, &j.Model, &j.Temperature, &j.PromptHash, &result, &j.Error, &j.StartedAt,
		&j.FinishedAt, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, scanErr(err)
	}
	j.Status = model.GenerationJobStatus(status)
	j.TargetDays = fromInt32s(targetDays)
	j.PartialDays = fromInt32s(partialDays)
	if len(result) > 0 {
		j.Result = result
	}
	return &j, nil
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func fromInt32s(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

// jsonOrNil keeps an empty document as SQL NULL.
func jsonOrNil(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
