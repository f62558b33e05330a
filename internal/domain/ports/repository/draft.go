package repository

import (
	"context"

	"trip-itinerary-ai/internal/domain/model"
)

type DraftRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Draft, error)
	// LockByID takes a row lock on the draft for the rest of tx. It serializes
	// job admission for the same draft.
	LockByID(ctx context.Context, tx Tx, id string) error
}
