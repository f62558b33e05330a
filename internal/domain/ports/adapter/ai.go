package adapter

import (
	"context"
	"encoding/json"
	"fmt"
)

// Usage for a single generation call, as reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerateResult carries the assistant text together with the exact request
// sent and the raw provider response, both kept for the audit ledger.
type GenerateResult struct {
	Text        string
	RawResponse string
	Request     json.RawMessage
	Usage       Usage
}

// Provider is the port for single-shot LLM text generation.
type Provider interface {
	Generate(ctx context.Context, prompt, model string, temperature float64) (*GenerateResult, error)
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
	Request    json.RawMessage
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Provider, e.StatusCode, e.Body)
}

// NetworkError wraps transport failures (reset, timeout, DNS) that never
// produced a response.
type NetworkError struct {
	Provider string
	Err      error
	Request  json.RawMessage
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
