//go:build !integration

package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trip-itinerary-ai/internal/domain/ports/adapter"
)

func TestBackoff(t *testing.T) {
	b := DefaultBackoff
	assert.Equal(t, 5, b.MaxAttempts())
	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, 7*time.Second, b.Delay(2))
	assert.Equal(t, 15*time.Second, b.Delay(3))
	assert.Equal(t, 15*time.Second, b.Delay(9))
	assert.Equal(t, time.Duration(0), Backoff{}.Delay(1))
}

func TestIsTransient(t *testing.T) {
	status := func(code int) error { return &adapter.StatusError{Provider: "test", StatusCode: code} }
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"408", status(408), true},
		{"429", status(429), true},
		{"500", status(500), true},
		{"502", status(502), true},
		{"503", status(503), true},
		{"504", status(504), true},
		{"400", status(400), false},
		{"401", status(401), false},
		{"403", status(403), false},
		{"404", status(404), false},
		{"wrapped 503", fmt.Errorf("call: %w", status(503)), true},
		{"network", &adapter.NetworkError{Provider: "test", Err: errors.New("connection reset by peer")}, true},
		{"canceled", &adapter.NetworkError{Provider: "test", Err: context.Canceled}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestClassifyProviderError(t *testing.T) {
	msg := ClassifyProviderError(&adapter.StatusError{Provider: "openai", StatusCode: 503, Body: "overloaded"})
	assert.Equal(t, "provider_error: http 503: overloaded", msg)
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}
