// Package engine provides the single logical thread that owns all
// in-memory game state.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrStopped is returned when work is submitted to a loop that has shut down
var ErrStopped = errors.New("engine loop stopped")

const defaultQueueSize = 1024

// Loop runs submitted functions one at a time, in submission order, on a
// single goroutine. State touched only from inside the loop needs no locks.
type Loop struct {
	tasks   chan func()
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

// New creates a loop. Call Run to start processing.
func New(logger *slog.Logger) *Loop {
	return &Loop{
		tasks:   make(chan func(), defaultQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger.With(slog.String("component", "engine")),
	}
}

// Run processes tasks until Close is called
func (l *Loop) Run() {
	defer close(l.stopped)
	l.logger.Info("engine loop started")
	for {
		select {
		case fn := <-l.tasks:
			l.exec(fn)
		case <-l.done:
			l.logger.Info("engine loop stopped", slog.Int("dropped_tasks", len(l.tasks)))
			return
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in engine task", slog.Any("panic", r))
		}
	}()
	fn()
}

// Do runs fn on the loop and waits for it to finish. If ctx ends before fn
// has started, fn is abandoned and never runs; once started, Do waits for it
// so fn never outlives the caller. Do must not be called from inside the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	var claimed atomic.Bool
	finished := make(chan struct{})
	task := func() {
		if !claimed.CompareAndSwap(false, true) {
			return
		}
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.stopped:
		// Run may have exited before reaching the task
		if claimed.CompareAndSwap(false, true) {
			return ErrStopped
		}
		<-finished
		return nil
	case <-ctx.Done():
		if claimed.CompareAndSwap(false, true) {
			return ctx.Err()
		}
		<-finished
		return nil
	}
}

// Close stops the loop. Queued tasks that have not started are dropped.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.done)
	})
}

// Stopped is closed once Run has returned
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}
