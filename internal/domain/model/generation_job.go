package model

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"trip-itinerary-ai/internal/domain"
)

type GenerationJobStatus string

const (
	GenerationJobStatusQueued    GenerationJobStatus = "QUEUED"
	GenerationJobStatusRunning   GenerationJobStatus = "RUNNING"
	GenerationJobStatusSucceeded GenerationJobStatus = "SUCCEEDED"
	GenerationJobStatusFailed    GenerationJobStatus = "FAILED"
)

// IsActive reports whether the status blocks admission of another job.
func (s GenerationJobStatus) IsActive() bool {
	return s == GenerationJobStatusQueued || s == GenerationJobStatusRunning
}

func (s GenerationJobStatus) IsTerminal() bool {
	return s == GenerationJobStatusSucceeded || s == GenerationJobStatusFailed
}

// Job error codes stored in GenerationJob.Error.
const (
	ErrorCodePartialSuccess = "AI_PARTIAL_SUCCESS"
	ErrorCodeRetryExhausted = "AI_RETRY_EXHAUSTED"
	ErrorCodeJobAbandoned   = "AI_JOB_ABANDONED"
)

// GenerationJob is one attempt-bounded run of the itinerary pipeline for a draft.
// ItineraryID is a weak reference set when the job regenerates an existing itinerary.
type GenerationJob struct {
	ID            string
	DraftID       string
	UserID        string
	ItineraryID   *string
	CorrelationID string
	Status        GenerationJobStatus
	TargetDays    []int // empty means all days
	RetryCount    int   // attempts consumed
	PartialDays   []int
	Model         string
	Temperature   float64
	PromptHash    string
	Result        json.RawMessage // normalized itinerary, set on success
	Error         *string
	StartedAt     *time.Time
	FinishedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewGenerationJob creates a QUEUED job with a fresh id and correlation id.
func NewGenerationJob(draftID, userID string, itineraryID *string, targetDays []int) (*GenerationJob, error) {
	if draftID == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &GenerationJob{
		ID:            uuid.NewString(),
		DraftID:       draftID,
		UserID:        userID,
		ItineraryID:   itineraryID,
		CorrelationID: ulid.Make().String(),
		Status:        GenerationJobStatusQueued,
		TargetDays:    NormalizeDays(targetDays),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Start moves a QUEUED job to RUNNING and records the generation parameters.
func (j *GenerationJob) Start(modelName string, temperature float64, promptHash string, now time.Time) error {
	if j.Status != GenerationJobStatusQueued {
		return domain.ErrInvalidTransition
	}
	j.Status = GenerationJobStatusRunning
	j.Model = modelName
	j.Temperature = temperature
	j.PromptHash = promptHash
	j.StartedAt = &now
	j.UpdatedAt = now
	return nil
}

// Succeed finishes a RUNNING job. A non-empty code marks a partial result.
func (j *GenerationJob) Succeed(partialDays []int, retryCount int, result json.RawMessage, code string, now time.Time) error {
	if j.Status != GenerationJobStatusRunning {
		return domain.ErrInvalidTransition
	}
	j.Status = GenerationJobStatusSucceeded
	j.PartialDays = NormalizeDays(partialDays)
	j.RetryCount = retryCount
	j.Result = result
	j.Error = nil
	if code != "" {
		j.Error = &code
	}
	j.FinishedAt = &now
	j.UpdatedAt = now
	return nil
}

// Fail finishes a RUNNING job with an error code or message.
func (j *GenerationJob) Fail(errMsg string, retryCount int, now time.Time) error {
	if j.Status != GenerationJobStatusRunning {
		return domain.ErrInvalidTransition
	}
	if errMsg == "" {
		errMsg = ErrorCodeRetryExhausted
	}
	j.Status = GenerationJobStatusFailed
	j.RetryCount = retryCount
	j.Error = &errMsg
	j.FinishedAt = &now
	j.UpdatedAt = now
	return nil
}

// Abandon fails a job that nothing will drive to completion. Unlike Fail it
// also accepts a QUEUED job, which then never gets a StartedAt.
func (j *GenerationJob) Abandon(code string, now time.Time) error {
	if !j.Status.IsActive() {
		return domain.ErrInvalidTransition
	}
	j.Status = GenerationJobStatusFailed
	j.Error = &code
	j.FinishedAt = &now
	j.UpdatedAt = now
	return nil
}

// PriorStatus is the active status a terminal job left: RUNNING once it was
// started, QUEUED otherwise.
func (j *GenerationJob) PriorStatus() GenerationJobStatus {
	if j.StartedAt == nil {
		return GenerationJobStatusQueued
	}
	return GenerationJobStatusRunning
}

// NormalizeDays returns the distinct day indices in ascending order.
func NormalizeDays(days []int) []int {
	if len(days) == 0 {
		return []int{}
	}
	seen := make(map[int]struct{}, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}
