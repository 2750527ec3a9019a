package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of scheduled work.
type Task func(ctx context.Context)

// Scheduler runs a Task once on start and then on a fixed interval. It can
// be driven directly through Start/Stop or handed to a supervisor through
// Serve.
type Scheduler struct {
	name     string
	interval time.Duration
	task     Task
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler builds a scheduler. A non-positive interval falls back to
// one minute.
func NewScheduler(name string, interval time.Duration, task Task, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		task:     task,
		log:      logger.With(zap.String("component", name)),
	}
}

// Serve runs the loop until ctx is cancelled.
func (s *Scheduler) Serve(ctx context.Context) error {
	if s.task == nil {
		return errors.New("scheduler task must not be nil")
	}

	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	s.run(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

// Start launches Serve in the background. It fails if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("%s already running", s.name)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		_ = s.Serve(runCtx)
	}()
	return nil
}

// Stop cancels a loop started with Start and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// String names the scheduler in supervisor logs.
func (s *Scheduler) String() string {
	return s.name
}

func (s *Scheduler) run(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("scheduled task panicked", zap.Any("panic", rec))
		}
	}()
	s.task(ctx)
}
