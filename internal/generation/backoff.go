package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"trip-itinerary-ai/internal/domain/ports/adapter"
)

// DefaultBackoff is the delay before the retry that follows attempt i.
var DefaultBackoff = Backoff{1 * time.Second, 3 * time.Second, 7 * time.Second, 15 * time.Second}

// Backoff is a fixed escalating delay schedule.
type Backoff []time.Duration

// Delay returns the wait after the given 0-based attempt, capped at the last entry.
func (b Backoff) Delay(attempt int) time.Duration {
	if len(b) == 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(b) {
		return b[len(b)-1]
	}
	return b[attempt]
}

// MaxAttempts is the number of provider calls a job may make.
func (b Backoff) MaxAttempts() int { return len(b) + 1 }

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the production Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config drives the retry controller. It is built from application config and
// passed explicitly.
type Config struct {
	Model       string
	Temperature float64
	Backoff     Backoff
	Sleep       Sleeper
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if len(c.Backoff) == 0 {
		c.Backoff = DefaultBackoff
	}
	if c.Sleep == nil {
		c.Sleep = Sleep
	}
	return c
}

var transientStatus = map[int]bool{
	408: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// IsTransient reports whether a provider failure is worth retrying: selected
// HTTP statuses and network-level failures. Cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *adapter.StatusError
	if errors.As(err, &se) {
		return transientStatus[se.StatusCode]
	}
	var ne *adapter.NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// ClassifyProviderError renders the audit message of a provider failure. It
// carries the provider body and never becomes the job error.
func ClassifyProviderError(err error) string {
	var se *adapter.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("provider_error: http %d: %s", se.StatusCode, truncate(se.Body, 300))
	}
	return "provider_error: " + truncate(err.Error(), 300)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
