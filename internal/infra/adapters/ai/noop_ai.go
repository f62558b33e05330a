package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"trip-itinerary-ai/internal/domain/model"
	"trip-itinerary-ai/internal/domain/ports/adapter"
)

const ProviderNoop = "noop"

var _ adapter.Provider = (*NoopAIAdapter)(nil)

var dateHint = regexp.MustCompile(`dayIndex (\d+) = (\d{4}-\d{2}-\d{2})`)

// NoopAIAdapter answers every prompt with a canned itinerary covering the
// dates listed in the prompt. Used for local runs without provider keys.
type NoopAIAdapter struct {
	log   *zerolog.Logger
	delay time.Duration
}

func NewNoopAIAdapter(log *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{log: log, delay: 100 * time.Millisecond}
}

func (a *NoopAIAdapter) Generate(ctx context.Context, prompt, model string, temperature float64) (*adapter.GenerateResult, error) {
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	type activity struct {
		Time       string `json:"time"`
		Location   string `json:"location"`
		Content    string `json:"content"`
		Weather    string `json:"weather"`
		OrderIndex int    `json:"orderIndex"`
	}
	type day struct {
		DayIndex   int        `json:"dayIndex"`
		Date       string     `json:"date"`
		Activities []activity `json:"activities"`
	}
	var days []day
	for _, m := range dateHint.FindAllStringSubmatch(prompt, -1) {
		idx, _ := strconv.Atoi(m[1])
		days = append(days, day{
			DayIndex: idx,
			Date:     m[2],
			Activities: []activity{
				{Time: "09:00", Location: "City center", Content: fmt.Sprintf("Morning walk, day %d", idx+1), Weather: model.WeatherUnknown, OrderIndex: 0},
				{Time: "13:00", Location: "Old town", Content: "Local lunch", Weather: model.WeatherUnknown, OrderIndex: 1},
			},
		})
	}
	text, _ := json.Marshal(map[string]any{"title": "Sample itinerary", "days": days})
	req, _ := json.Marshal(map[string]any{"model": model, "temperature": temperature, "prompt": prompt})

	if a.log != nil {
		a.log.Debug().Str("model", model).Int("days", len(days)).Msg("noop ai generate")
	}
	return &adapter.GenerateResult{Text: string(text), RawResponse: string(text), Request: req}, nil
}
