package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AIGenerationAudit is an append-only record of one provider attempt or of a
// job's terminal transition. Rows are never updated.
type AIGenerationAudit struct {
	ID             string
	JobID          string
	CorrelationID  string
	Prompt         string
	RawRequest     json.RawMessage
	RawResponse    string
	ParsedFragment json.RawMessage // nil when nothing parsed
	Status         GenerationJobStatus
	RetryCount     int // attempt index
	Model          string
	Temperature    float64
	ErrorMessage   *string
	CreatedAt      time.Time
}

// NewAudit snapshots the job into a new audit row.
func NewAudit(job *GenerationJob, attempt int, prompt string) *AIGenerationAudit {
	return &AIGenerationAudit{
		ID:            uuid.NewString(),
		JobID:         job.ID,
		CorrelationID: job.CorrelationID,
		Prompt:        prompt,
		Status:        job.Status,
		RetryCount:    attempt,
		Model:         job.Model,
		Temperature:   job.Temperature,
		CreatedAt:     time.Now(),
	}
}
