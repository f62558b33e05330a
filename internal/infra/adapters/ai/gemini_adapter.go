package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"trip-itinerary-ai/internal/domain/ports/adapter"
	"trip-itinerary-ai/internal/infra/metrics"
)

const ProviderGemini = "gemini"

var _ adapter.Provider = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, timeout time.Duration) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	opts := genai.HTTPOptions{BaseURL: baseURL}
	if timeout > 0 {
		opts.Timeout = &timeout
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: opts,
	})
	if err != nil {
		return nil, err
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.0-flash"
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel}, nil
}

func (g *GeminiAdapter) Generate(ctx context.Context, prompt, model string, temperature float64) (*adapter.GenerateResult, error) {
	model = modelOrDefault(model, g.defaultModel)
	reqBody, _ := json.Marshal(map[string]any{
		"model":            model,
		"prompt":           prompt,
		"temperature":      temperature,
		"responseMimeType": "application/json",
	})

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(temperature)),
		ResponseMIMEType: "application/json",
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		metrics.ObserveGenerate(ProviderGemini, model, 0, 0, latency, false)
		return nil, mapGeminiError(ctx, err, reqBody)
	}

	raw, _ := json.Marshal(resp)
	out := &adapter.GenerateResult{
		Text:        resp.Text(),
		RawResponse: string(raw),
		Request:     reqBody,
	}
	if resp.UsageMetadata != nil {
		out.Usage = adapter.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	metrics.ObserveGenerate(ProviderGemini, model, out.Usage.PromptTokens, out.Usage.CompletionTokens, latency, true)
	return out, nil
}

func mapGeminiError(ctx context.Context, err error, reqBody []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &adapter.StatusError{
			Provider:   ProviderGemini,
			StatusCode: apiErr.Code,
			Body:       apiErr.Message,
			Request:    reqBody,
		}
	}
	return &adapter.NetworkError{Provider: ProviderGemini, Err: err, Request: reqBody}
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
