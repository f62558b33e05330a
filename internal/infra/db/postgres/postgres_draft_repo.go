package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"trip-itinerary-ai/internal/domain/model"
	"trip-itinerary-ai/internal/domain/ports/repository"
)

var _ repository.DraftRepository = (*draftRepo)(nil)

type draftRepo struct{ pool *pgxpool.Pool }

func NewDraftRepo(pool *pgxpool.Pool) *draftRepo {
	return &draftRepo{pool: pool}
}

const draftColumns = `id, user_id, origin, destinations, start_date, end_date, budget, currency, purposes,
  adults, children, infants, seniors, created_at, updated_at`

func (r *draftRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Draft, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+draftColumns+` FROM drafts WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	d := &model.Draft{}
	if err := row.Scan(&d.ID, &d.UserID, &d.Origin, &d.Destinations, &d.StartDate, &d.EndDate, &d.Budget, &d.Currency,
		&d.Purposes, &d.Companions.Adults, &d.Companions.Children, &d.Companions.Infants, &d.Companions.Seniors,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, scanErr(err)
	}
	return d, nil
}

// LockByID takes FOR UPDATE on the draft row. Outside a transaction it only
// checks existence.
func (r *draftRepo) LockByID(ctx context.Context, tx repository.Tx, id string) error {
	q := `SELECT id FROM drafts WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return err
	}
	var got string
	if err := row.Scan(&got); err != nil {
		return scanErr(err)
	}
	return nil
}

// Save upserts a draft. Drafts are owned by the trip planner; the pipeline
// only reads them, this exists for seeding and tests.
func (r *draftRepo) Save(ctx context.Context, tx repository.Tx, d *model.Draft) error {
	const q = `
INSERT INTO drafts (` + draftColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (id) DO UPDATE SET
  origin=$3, destinations=$4, start_date=$5, end_date=$6, budget=$7, currency=$8, purposes=$9,
  adults=$10, children=$11, infants=$12, seniors=$13, updated_at=$15;`
	_, err := execSQL(ctx, r.pool, tx, q, d.ID, d.UserID, d.Origin, textArray(d.Destinations), d.StartDate, d.EndDate, d.Budget,
		d.Currency, textArray(d.Purposes), d.Companions.Adults, d.Companions.Children, d.Companions.Infants, d.Companions.Seniors,
		d.CreatedAt, d.UpdatedAt)
	return err
}

func textArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
