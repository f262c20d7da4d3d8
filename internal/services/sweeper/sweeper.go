// Package sweeper runs periodic background jobs such as purging expired
// invitations and timing out players whose clocks have run out.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JobFunc is one sweep. It should return promptly once ctx is done.
type JobFunc func(ctx context.Context)

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
}

// Sweeper runs each registered job on its own ticker until stopped
type Sweeper struct {
	logger *slog.Logger

	mu      sync.Mutex
	jobs    []job
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// New creates an idle Sweeper
func New(logger *slog.Logger) *Sweeper {
	return &Sweeper{
		logger: logger.With(slog.String("component", "sweeper")),
	}
}

// AddJob registers fn to run every interval. Jobs added after Start are
// ignored; jobs with a non-positive interval are skipped.
func (s *Sweeper) AddJob(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Warn("job added after start ignored", slog.String("job", name))
		return
	}
	if interval <= 0 {
		s.logger.Warn("job with non-positive interval skipped", slog.String("job", name))
		return
	}
	s.jobs = append(s.jobs, job{name: name, interval: interval, fn: fn})
}

// Start launches the job loops. They stop when ctx is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
	s.logger.Info("sweeper started", slog.Int("jobs", len(s.jobs)))
}

// Stop cancels every job loop and waits for in-flight sweeps to finish
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// JobCount returns the number of registered jobs
func (s *Sweeper) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Sweeper) loop(ctx context.Context, j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.run(ctx, j)
		case <-ctx.Done():
			return
		}
	}
}

// run executes one sweep, keeping a panicking job from killing its loop
func (s *Sweeper) run(ctx context.Context, j job) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("sweep panicked",
				slog.String("job", j.name),
				slog.Any("panic", rec))
		}
	}()
	j.fn(ctx)
}
