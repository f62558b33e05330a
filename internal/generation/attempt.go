package generation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"trip-itinerary-ai/internal/domain/ports/adapter"
)

type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeParseFailed    Outcome = "parse_failed"
	OutcomeSchemaFailed   Outcome = "schema_failed"
	OutcomeProviderFailed Outcome = "provider_failed"
)

// Attempt is the tagged result of one provider call and its post-processing.
type Attempt struct {
	Index       int
	Prompt      string
	Outcome     Outcome
	Request     json.RawMessage
	RawResponse string
	Parsed      map[string]any
	Validation  *ValidationResult
	Err         error
	Retryable   bool
	Duration    time.Duration
}

// Execute calls the provider once and runs the response through the
// sanitizer, the repairing parser and the validator.
func Execute(ctx context.Context, p adapter.Provider, index int, prompt, model string, temperature float64) *Attempt {
	a := &Attempt{Index: index, Prompt: prompt}
	start := time.Now()
	defer func() { a.Duration = time.Since(start) }()

	res, err := p.Generate(ctx, prompt, model, temperature)
	if err != nil {
		a.Outcome = OutcomeProviderFailed
		a.Err = err
		a.Retryable = IsTransient(err)
		var se *adapter.StatusError
		var ne *adapter.NetworkError
		switch {
		case errors.As(err, &se):
			a.Request = se.Request
			a.RawResponse = se.Body
		case errors.As(err, &ne):
			a.Request = ne.Request
		}
		return a
	}
	a.Request = res.Request
	a.RawResponse = res.RawResponse

	parsed, err := Parse(StripCodeFence(res.Text))
	if err != nil {
		a.Outcome = OutcomeParseFailed
		a.Err = err
		a.Retryable = true
		return a
	}
	a.Parsed = parsed

	vr, err := Validate(parsed)
	a.Validation = vr
	if err != nil {
		a.Outcome = OutcomeSchemaFailed
		a.Err = err
		a.Retryable = true
		return a
	}
	a.Outcome = OutcomeSuccess
	return a
}

// ErrorMessage is the message stored on audit rows and, for the last failure,
// on the job.
func (a *Attempt) ErrorMessage() string {
	switch a.Outcome {
	case OutcomeProviderFailed:
		return ClassifyProviderError(a.Err)
	case OutcomeParseFailed:
		return "parse_error: " + a.Err.Error()
	case OutcomeSchemaFailed:
		if errors.Is(a.Err, ErrNoValidDays) {
			return "schema_error: " + ErrNoValidDays.Error()
		}
		return "schema_error: " + a.Err.Error()
	}
	return ""
}

// RepairHint is the reason fed back into the next prompt. Provider failures
// carry none.
func (a *Attempt) RepairHint() string {
	if a.Outcome == OutcomeParseFailed || a.Outcome == OutcomeSchemaFailed {
		return a.ErrorMessage()
	}
	return ""
}

// ParsedFragment is the parsed response re-encoded for the audit row.
func (a *Attempt) ParsedFragment() json.RawMessage {
	if a.Parsed == nil {
		return nil
	}
	b, err := json.Marshal(a.Parsed)
	if err != nil {
		return nil
	}
	return b
}
