// Package scheduler runs named periodic tasks. A task never overlaps
// itself: a firing that arrives while the previous run is still in
// flight is skipped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrBusy        = errors.New("task already running")
	ErrUnknownTask = errors.New("unknown task")
	ErrStarted     = errors.New("scheduler already started")
)

// Func is the body of a periodic task
type Func func(ctx context.Context) error

// Task describes one cadence
type Task struct {
	Name     string
	Interval time.Duration
	Run      Func
}

type task struct {
	Task
	running atomic.Bool
	skipped atomic.Int64
	runs    atomic.Int64
}

// Scheduler drives a fixed set of tasks on their own tickers
type Scheduler struct {
	mu      sync.Mutex
	tasks   []*task
	byName  map[string]*task
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// New creates an empty Scheduler
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		byName: make(map[string]*task),
		logger: logger.With(slog.String("component", "scheduler")),
	}
}

// Add registers a task. Tasks must be added before Start.
func (s *Scheduler) Add(t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrStarted
	}
	if t.Name == "" || t.Run == nil {
		return fmt.Errorf("invalid task %q", t.Name)
	}
	if t.Interval <= 0 {
		return fmt.Errorf("task %q: interval must be positive", t.Name)
	}
	if _, ok := s.byName[t.Name]; ok {
		return fmt.Errorf("task %q already registered", t.Name)
	}

	tk := &task{Task: t}
	s.tasks = append(s.tasks, tk)
	s.byName[t.Name] = tk
	return nil
}

// Start launches one ticker per task. Runs stop when ctx ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, t)
		s.logger.Info("task scheduled",
			slog.String("task", t.Name),
			slog.Duration("interval", t.Interval))
	}
	return nil
}

// Stop cancels all tasks and waits for in-flight runs to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Trigger runs a task immediately, subject to the same overlap guard
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	t, ok := s.byName[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	if !t.running.CompareAndSwap(false, true) {
		t.skipped.Add(1)
		return ErrBusy
	}
	defer t.running.Store(false)
	return s.exec(ctx, t)
}

// Skipped returns how many firings of a task were dropped due to overlap
func (s *Scheduler) Skipped(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byName[name]; ok {
		return t.skipped.Load()
	}
	return 0
}

// Runs returns how many times a task has completed
func (s *Scheduler) Runs(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byName[name]; ok {
		return t.runs.Load()
	}
	return 0
}

func (s *Scheduler) loop(ctx context.Context, t *task) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !t.running.CompareAndSwap(false, true) {
				t.skipped.Add(1)
				s.logger.Debug("task still running, skipping",
					slog.String("task", t.Name))
				continue
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer t.running.Store(false)
				_ = s.exec(ctx, t)
			}()
		}
	}
}

func (s *Scheduler) exec(ctx context.Context, t *task) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.Name, r)
		}
		t.runs.Add(1)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("task failed",
				slog.String("task", t.Name),
				slog.Duration("duration", time.Since(start)),
				slog.String("error", err.Error()))
		}
	}()
	return t.Run(ctx)
}
