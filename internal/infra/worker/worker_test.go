//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-itinerary-ai/internal/domain"
	"trip-itinerary-ai/internal/domain/model"
)

func nopLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := NewPool(2, nopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	var n int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt32(&n, 1)
			return nil
		}))
	}
	wg.Wait()
	p.Stop()
	p.Stop()
	assert.Equal(t, int32(5), atomic.LoadInt32(&n))
}

func TestPool_SubmitFullAndNil(t *testing.T) {
	p := NewPool(1, nopLogger()) // not started, buffer of 4
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Submit(func(context.Context) error { return nil }))
	}
	assert.ErrorIs(t, p.Submit(func(context.Context) error { return nil }), ErrQueueFull)
	assert.Error(t, p.Submit(nil))
}

type queueRunner struct {
	mu      sync.Mutex
	pending int
	ran     int
	err     error
}

func (q *queueRunner) RunNext(ctx context.Context) (*model.GenerationJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	if q.pending == 0 {
		return nil, domain.ErrNotFound
	}
	q.pending--
	q.ran++
	return &model.GenerationJob{ID: "j", Status: model.GenerationJobStatusSucceeded}, nil
}

func TestGenerationProcessor_DrainsQueue(t *testing.T) {
	r := &queueRunner{pending: 3}
	p := NewGenerationProcessor(r, time.Second, nopLogger())

	require.NoError(t, p.drain(context.Background()))
	assert.Equal(t, 3, r.ran)
	assert.Equal(t, 0, r.pending)
}

func TestGenerationProcessor_DrainReturnsRunnerError(t *testing.T) {
	r := &queueRunner{err: errors.New("db down")}
	p := NewGenerationProcessor(r, time.Second, nopLogger())
	assert.EqualError(t, p.drain(context.Background()), "db down")
}

func TestGenerationProcessor_StartStopsOnCancel(t *testing.T) {
	r := &queueRunner{pending: 2}
	p := NewGenerationProcessor(r, 10*time.Millisecond, nopLogger())
	pool := NewPool(1, nopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	done := make(chan error, 1)
	go func() { done <- p.Start(ctx, pool) }()

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.ran == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	pool.Stop()
}

type countingRecoverer struct {
	calls     int32
	olderThan time.Duration
}

func (c *countingRecoverer) RecoverStuck(ctx context.Context, olderThan time.Duration) (int, error) {
	atomic.AddInt32(&c.calls, 1)
	c.olderThan = olderThan
	return 1, nil
}

func TestStuckJobSweeper(t *testing.T) {
	rec := &countingRecoverer{}
	w := NewStuckJobSweeper(10*time.Millisecond, 15*time.Minute, rec, nopLogger())

	assert.Equal(t, 1, w.SweepOnce(context.Background()))
	assert.Equal(t, 15*time.Minute, rec.olderThan)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&rec.calls) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
