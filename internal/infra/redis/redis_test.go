//go:build !integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-itinerary-ai/internal/config"
	"trip-itinerary-ai/internal/domain"
)

func newTestClient(t *testing.T) (*redClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(context.Background(), &config.RedisConfig{URL: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	l := NewLocker(c)
	l.backoff = time.Millisecond

	tok, err := l.TryLock(ctx, "genjob:admit:d1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	_, err = l.TryLock(ctx, "genjob:admit:d1", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)

	// wrong token leaves the lock in place
	require.NoError(t, l.Unlock(ctx, "genjob:admit:d1", "other"))
	assert.True(t, mr.Exists("genjob:admit:d1"))

	require.NoError(t, l.Unlock(ctx, "genjob:admit:d1", tok))
	assert.False(t, mr.Exists("genjob:admit:d1"))

	_, err = l.TryLock(ctx, "genjob:admit:d1", time.Minute)
	assert.NoError(t, err)
}

func TestRedisLockerExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	l := NewLocker(c)
	l.backoff = time.Millisecond

	_, err := l.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	_, err = l.TryLock(ctx, "k", time.Second)
	assert.NoError(t, err)
}

func TestNewClientRedisURL(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(context.Background(), &config.RedisConfig{URL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "a", "b", time.Minute))
	v, err := c.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}
