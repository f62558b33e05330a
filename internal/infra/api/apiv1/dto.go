package apiv1

import (
	"encoding/json"
	"time"

	"trip-itinerary-ai/internal/domain/model"
	"trip-itinerary-ai/internal/usecase"
)

type EnqueueRequest struct {
	TargetDays  []int   `json:"targetDays" validate:"omitempty,max=366,dive,gte=0"`
	ItineraryID *string `json:"itineraryId" validate:"omitempty,min=1,max=64"`
}

type EnqueueResponse struct {
	JobID         string `json:"jobId"`
	Status        string `json:"status"`
	CorrelationID string `json:"correlationId"`
}

type JobStatusResponse struct {
	JobID       string  `json:"jobId"`
	Status      string  `json:"status"`
	RetryCount  int     `json:"retryCount"`
	PartialDays []int   `json:"partialDays"`
	Error       *string `json:"error"`
}

type Audit struct {
	ID             string          `json:"id"`
	JobID          string          `json:"jobId"`
	CorrelationID  string          `json:"correlationId"`
	Status         string          `json:"status"`
	RetryCount     int             `json:"retryCount"`
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	Prompt         string          `json:"prompt"`
	RawRequest     json.RawMessage `json:"rawRequest,omitempty"`
	RawResponse    string          `json:"rawResponse,omitempty"`
	ParsedFragment json.RawMessage `json:"parsedFragment,omitempty"`
	ErrorMessage   *string         `json:"errorMessage"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func toEnqueueResponse(r *usecase.EnqueueResult) EnqueueResponse {
	return EnqueueResponse{JobID: r.JobID, Status: string(r.Status), CorrelationID: r.CorrelationID}
}

func toJobStatusResponse(s *usecase.JobStatus) JobStatusResponse {
	days := s.PartialDays
	if days == nil {
		days = []int{}
	}
	return JobStatusResponse{
		JobID:       s.JobID,
		Status:      string(s.Status),
		RetryCount:  s.RetryCount,
		PartialDays: days,
		Error:       s.Error,
	}
}

func toAudit(a *model.AIGenerationAudit) Audit {
	return Audit{
		ID:             a.ID,
		JobID:          a.JobID,
		CorrelationID:  a.CorrelationID,
		Status:         string(a.Status),
		RetryCount:     a.RetryCount,
		Model:          a.Model,
		Temperature:    a.Temperature,
		Prompt:         a.Prompt,
		RawRequest:     a.RawRequest,
		RawResponse:    a.RawResponse,
		ParsedFragment: a.ParsedFragment,
		ErrorMessage:   a.ErrorMessage,
		CreatedAt:      a.CreatedAt,
	}
}
