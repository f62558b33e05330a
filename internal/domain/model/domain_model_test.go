//go:build !integration

package model

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"trip-itinerary-ai/internal/domain"
)

// --- Draft Tests ---

func TestDraftDates(t *testing.T) {
	t.Run("should expand an inclusive range", func(t *testing.T) {
		d := &Draft{
			StartDate: time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		}
		dates := d.Dates()
		if len(dates) != 4 {
			t.Fatalf("expected 4 dates, got %d", len(dates))
		}
		if got := dates[3].Format("2006-01-02"); got != "2025-04-02" {
			t.Errorf("expected last date 2025-04-02, got %s", got)
		}
		if d.DayCount() != 4 {
			t.Errorf("expected DayCount 4, got %d", d.DayCount())
		}
	})

	t.Run("should return a single day when start equals end", func(t *testing.T) {
		day := time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)
		d := &Draft{StartDate: day, EndDate: day}
		if d.DayCount() != 1 {
			t.Errorf("expected 1 day, got %d", d.DayCount())
		}
	})

	t.Run("should return nothing for an inverted range", func(t *testing.T) {
		d := &Draft{
			StartDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		if d.DayCount() != 0 {
			t.Errorf("expected 0 days, got %d", d.DayCount())
		}
	})
}

// --- GenerationJob Tests ---

func TestNewGenerationJob(t *testing.T) {
	t.Run("should create a queued job with normalized target days", func(t *testing.T) {
		job, err := NewGenerationJob("draft-1", "user-1", nil, []int{2, 0, 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if job.Status != GenerationJobStatusQueued {
			t.Errorf("expected QUEUED, got %s", job.Status)
		}
		if !reflect.DeepEqual(job.TargetDays, []int{0, 2}) {
			t.Errorf("expected target days [0 2], got %v", job.TargetDays)
		}
		if job.ID == "" || job.CorrelationID == "" {
			t.Error("expected id and correlation id to be set")
		}
	})

	t.Run("should fail without a draft", func(t *testing.T) {
		_, err := NewGenerationJob("", "user-1", nil, nil)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestGenerationJobTransitions(t *testing.T) {
	now := time.Now()

	t.Run("should run the happy path once", func(t *testing.T) {
		job, _ := NewGenerationJob("d", "u", nil, nil)
		if err := job.Start("gpt-4o-mini", 0.7, "hash", now); err != nil {
			t.Fatalf("start: %v", err)
		}
		if job.StartedAt == nil || job.Model != "gpt-4o-mini" || job.PromptHash != "hash" {
			t.Error("expected start to record generation parameters")
		}
		if err := job.Start("gpt-4o-mini", 0.7, "hash", now); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("expected second start to fail, got %v", err)
		}
		if err := job.Succeed([]int{2, 0}, 1, nil, "", now); err != nil {
			t.Fatalf("succeed: %v", err)
		}
		if job.Error != nil {
			t.Errorf("expected no error code, got %q", *job.Error)
		}
		if !reflect.DeepEqual(job.PartialDays, []int{0, 2}) {
			t.Errorf("expected sorted partial days, got %v", job.PartialDays)
		}
		if err := job.Fail("x", 1, now); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("expected terminal job to reject Fail, got %v", err)
		}
	})

	t.Run("should default the failure code", func(t *testing.T) {
		job, _ := NewGenerationJob("d", "u", nil, nil)
		_ = job.Start("m", 0, "h", now)
		if err := job.Fail("", 5, now); err != nil {
			t.Fatalf("fail: %v", err)
		}
		if job.Error == nil || *job.Error != ErrorCodeRetryExhausted {
			t.Errorf("expected %s, got %v", ErrorCodeRetryExhausted, job.Error)
		}
		if job.FinishedAt == nil {
			t.Error("expected finishedAt to be set")
		}
	})

	t.Run("should abandon queued and running jobs only", func(t *testing.T) {
		queued, _ := NewGenerationJob("d", "u", nil, nil)
		if err := queued.Abandon(ErrorCodeJobAbandoned, now); err != nil {
			t.Fatalf("abandon queued: %v", err)
		}
		if queued.Status != GenerationJobStatusFailed || queued.PriorStatus() != GenerationJobStatusQueued {
			t.Errorf("unexpected abandoned job: %s from %s", queued.Status, queued.PriorStatus())
		}
		if err := queued.Abandon(ErrorCodeJobAbandoned, now); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("expected terminal job to reject Abandon, got %v", err)
		}

		running, _ := NewGenerationJob("d", "u", nil, nil)
		_ = running.Start("m", 0, "h", now)
		if err := running.Abandon(ErrorCodeJobAbandoned, now); err != nil {
			t.Fatalf("abandon running: %v", err)
		}
		if running.PriorStatus() != GenerationJobStatusRunning || *running.Error != ErrorCodeJobAbandoned {
			t.Errorf("unexpected abandoned job: %+v", running)
		}
	})

	t.Run("should reject finishing a queued job", func(t *testing.T) {
		job, _ := NewGenerationJob("d", "u", nil, nil)
		if err := job.Succeed(nil, 0, nil, "", now); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestNewAudit(t *testing.T) {
	job, _ := NewGenerationJob("d", "u", nil, nil)
	_ = job.Start("gemini-2.0-flash", 0.4, "h", time.Now())

	a := NewAudit(job, 3, "prompt")
	if a.JobID != job.ID || a.CorrelationID != job.CorrelationID {
		t.Error("expected audit to reference the job")
	}
	if a.Status != GenerationJobStatusRunning || a.RetryCount != 3 {
		t.Errorf("unexpected snapshot: %s/%d", a.Status, a.RetryCount)
	}
}
