package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/idlecoins/internal/testutil"
)

func TestScheduler_RunsPeriodically(t *testing.T) {
	s := New(testutil.NopLogger())
	var count atomic.Int64
	require.NoError(t, s.Add(Task{
		Name:     "tick",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			count.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, time.Millisecond)
	s.Stop()

	after := count.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, count.Load(), "no runs after Stop")
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := New(testutil.NopLogger())
	release := make(chan struct{})
	var started atomic.Int64
	require.NoError(t, s.Add(Task{
		Name:     "slow",
		Interval: 2 * time.Millisecond,
		Run: func(ctx context.Context) error {
			started.Add(1)
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return s.Skipped("slow") >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, int64(1), started.Load())

	close(release)
	s.Stop()
}

func TestScheduler_TriggerHonoursGuard(t *testing.T) {
	s := New(testutil.NopLogger())
	entered := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.Add(Task{
		Name:     "sweep",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		},
	}))

	done := make(chan error)
	go func() { done <- s.Trigger(context.Background(), "sweep") }()
	<-entered

	assert.ErrorIs(t, s.Trigger(context.Background(), "sweep"), ErrBusy)
	assert.Equal(t, int64(1), s.Skipped("sweep"))

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, int64(1), s.Runs("sweep"))
}

func TestScheduler_TriggerReturnsTaskError(t *testing.T) {
	s := New(testutil.NopLogger())
	boom := errors.New("boom")
	require.NoError(t, s.Add(Task{
		Name:     "fails",
		Interval: time.Hour,
		Run:      func(ctx context.Context) error { return boom },
	}))

	assert.ErrorIs(t, s.Trigger(context.Background(), "fails"), boom)
	// A failure does not wedge the guard
	assert.ErrorIs(t, s.Trigger(context.Background(), "fails"), boom)
}

func TestScheduler_TriggerRecoversPanic(t *testing.T) {
	s := New(testutil.NopLogger())
	require.NoError(t, s.Add(Task{
		Name:     "panics",
		Interval: time.Hour,
		Run:      func(ctx context.Context) error { panic("oops") },
	}))

	err := s.Trigger(context.Background(), "panics")
	assert.ErrorContains(t, err, "panicked")
}

func TestScheduler_AddValidation(t *testing.T) {
	s := New(testutil.NopLogger())
	noop := func(ctx context.Context) error { return nil }

	assert.Error(t, s.Add(Task{Name: "", Interval: time.Second, Run: noop}))
	assert.Error(t, s.Add(Task{Name: "x", Interval: 0, Run: noop}))
	assert.Error(t, s.Add(Task{Name: "x", Interval: time.Second}))
	require.NoError(t, s.Add(Task{Name: "x", Interval: time.Second, Run: noop}))
	assert.Error(t, s.Add(Task{Name: "x", Interval: time.Second, Run: noop}))

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	assert.ErrorIs(t, s.Add(Task{Name: "y", Interval: time.Second, Run: noop}), ErrStarted)
	assert.ErrorIs(t, s.Start(context.Background()), ErrStarted)
}

func TestScheduler_TriggerUnknown(t *testing.T) {
	s := New(testutil.NopLogger())
	assert.ErrorIs(t, s.Trigger(context.Background(), "nope"), ErrUnknownTask)
}
