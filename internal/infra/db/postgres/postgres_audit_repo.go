package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"trip-itinerary-ai/internal/domain/model"
	"trip-itinerary-ai/internal/domain/ports/repository"
)

var _ repository.AuditRepository = (*auditRepo)(nil)

// auditRepo only inserts; the table rejects updates and deletes.
type auditRepo struct{ pool *pgxpool.Pool }

func NewAuditRepo(pool *pgxpool.Pool) *auditRepo {
	return &auditRepo{pool: pool}
}

const auditColumns = `id, job_id, correlation_id, prompt, raw_request, raw_response, parsed_fragment, status,
  retry_count, model, temperature, error_message, created_at`

func (r *auditRepo) Append(ctx context.Context, tx repository.Tx, a *model.AIGenerationAudit) error {
	const q = `INSERT INTO ai_generation_audits (` + auditColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13);`
	_, err := execSQL(ctx, r.pool, tx, q, a.ID, a.JobID, a.CorrelationID, pgText(a.Prompt), jsonOrNil(pgJSON(a.RawRequest)),
		pgText(a.RawResponse), jsonOrNil(pgJSON(a.ParsedFragment)), string(a.Status), a.RetryCount, a.Model, a.Temperature,
		pgTextPtr(a.ErrorMessage), a.CreatedAt)
	return err
}

func (r *auditRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.AIGenerationAudit, error) {
	return r.list(ctx, tx, `SELECT `+auditColumns+` FROM ai_generation_audits WHERE job_id=$1 ORDER BY seq;`, jobID)
}

// ListByCorrelation replays a job's trail in write order.
func (r *auditRepo) ListByCorrelation(ctx context.Context, tx repository.Tx, correlationID string) ([]*model.AIGenerationAudit, error) {
	return r.list(ctx, tx, `SELECT `+auditColumns+` FROM ai_generation_audits
WHERE correlation_id=$1 ORDER BY retry_count, created_at, seq;`, correlationID)
}

func (r *auditRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.AIGenerationAudit, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AIGenerationAudit
	for rows.Next() {
		var (
			a       model.AIGenerationAudit
			status  string
			rawReq  []byte
			partial []byte
		)
		if err := rows.Scan(&a.ID, &a.JobID, &a.CorrelationID, &a.Prompt, &rawReq, &a.RawResponse, &partial, &status,
			&a.RetryCount, &a.Model, &a.Temperature, &a.ErrorMessage, &a.CreatedAt); err != nil {
			return nil, scanErr(err)
		}
		a.Status = model.GenerationJobStatus(status)
		if len(rawReq) > 0 {
			a.RawRequest = rawReq
		}
		if len(partial) > 0 {
			a.ParsedFragment = partial
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
