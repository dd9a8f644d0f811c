package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	applogger "ecogw/pkg/logger"
)

const defaultTick = time.Second

// Option configures Scheduler.
type Option func(*Scheduler)

// WithTick sets the control loop period.
func WithTick(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler runs registered jobs from a single control loop. Due jobs run one after
// another inside the tick that found them due, so a job never overlaps itself.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	names   map[string]struct{}

	tick   time.Duration
	now    func() time.Time
	logger *applogger.Logger
}

// New creates a scheduler with no jobs.
func New(logger *applogger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		names:  make(map[string]struct{}),
		tick:   defaultTick,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a job. Names must be unique.
func (s *Scheduler) Add(job Job, sched Schedule) error {
	if sched.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.names[job.Name()]; exists {
		return fmt.Errorf("job %s: already registered", job.Name())
	}
	s.names[job.Name()] = struct{}{}
	s.entries = append(s.entries, &entry{job: job, schedule: sched, anchor: s.now()})

	s.logger.Info("job registered",
		applogger.String("job", job.Name()),
		applogger.Bool("enabled", sched.Enabled),
		applogger.Bool("run_now", sched.RunNow),
		applogger.Duration("interval_ms", sched.Interval),
	)
	return nil
}

// Run drives the control loop until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.logger.Info("scheduler started", applogger.Duration("tick_ms", s.tick))
	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs every job that is due now, in registration order.
func (s *Scheduler) Tick(ctx context.Context) {
	s.mu.Lock()
	entries := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}

		now := s.now()
		s.mu.Lock()
		if !e.due(now) {
			s.mu.Unlock()
			continue
		}
		e.running = true
		e.attempted = true
		e.anchor = now
		e.runCount++
		s.mu.Unlock()

		s.logger.Info("run job", applogger.String("job", e.job.Name()))
		elapsed := s.runSafe(ctx, e.job)

		s.mu.Lock()
		e.running = false
		e.lastRunTime = elapsed
		s.mu.Unlock()
	}
}

func (s *Scheduler) runSafe(ctx context.Context, job Job) (elapsed time.Duration) {
	start := time.Now()
	defer func() {
		elapsed = time.Since(start)
		if r := recover(); r != nil {
			s.logger.Error("job panicked",
				applogger.String("job", job.Name()),
				applogger.Any("panic", r),
			)
		}
	}()
	job.Run(ctx)
	return
}

// Status returns a copy of every job's scheduling state.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]JobStatus, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.status(now))
	}
	return out
}
