package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"trip-itinerary-ai/internal/domain/ports/adapter"
	"trip-itinerary-ai/internal/infra/metrics"
)

const ProviderOpenAI = "openai"

// Compile-time assurance this adapter satisfies the port
var _ adapter.Provider = (*OpenAIAdapter)(nil)

// OpenAIAdapter calls an OpenAI-compatible Chat Completions endpoint in JSON mode.
type OpenAIAdapter struct {
	apiKey string
	base   string // e.g., https://api.openai.com/v1
	model  string
	client *http.Client
}

func NewOpenAIAdapter(apiKey, model, base string, timeout time.Duration) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIAdapter{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		model:  model,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (o *OpenAIAdapter) Generate(ctx context.Context, prompt, model string, temperature float64) (*adapter.GenerateResult, error) {
	if model == "" {
		model = o.model
	}
	reqBody, _ := json.Marshal(chatRequest{
		Model:          model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	})

	start := time.Now()
	res, err := o.do(ctx, reqBody)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		metrics.ObserveGenerate(ProviderOpenAI, model, 0, 0, latency, false)
		return nil, err
	}
	metrics.ObserveGenerate(ProviderOpenAI, model, res.Usage.PromptTokens, res.Usage.CompletionTokens, latency, true)
	return res, nil
}

func (o *OpenAIAdapter) do(ctx context.Context, reqBody []byte) (*adapter.GenerateResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &adapter.NetworkError{Provider: ProviderOpenAI, Err: err, Request: reqBody}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &adapter.NetworkError{Provider: ProviderOpenAI, Err: err, Request: reqBody}
	}
	if resp.StatusCode >= 300 {
		return nil, &adapter.StatusError{
			Provider:   ProviderOpenAI,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Request:    reqBody,
		}
	}

	var payload chatResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		// A 2xx with a body that is not a chat completion; let the parser reject it.
		return &adapter.GenerateResult{Text: string(raw), RawResponse: string(raw), Request: reqBody}, nil
	}
	out := &adapter.GenerateResult{
		RawResponse: string(raw),
		Request:     reqBody,
		Usage: adapter.Usage{
			PromptTokens:     payload.Usage.PromptTokens,
			CompletionTokens: payload.Usage.CompletionTokens,
			TotalTokens:      payload.Usage.TotalTokens,
		},
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			out.Text = c.Message.Content
			break
		}
	}
	return out, nil
}
