package repository

import (
	"context"

	"trip-itinerary-ai/internal/domain/model"
)

// AuditRepository is append-only.
type AuditRepository interface {
	Append(ctx context.Context, tx Tx, audit *model.AIGenerationAudit) error
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.AIGenerationAudit, error)
	ListByCorrelation(ctx context.Context, tx Tx, correlationID string) ([]*model.AIGenerationAudit, error)
}
