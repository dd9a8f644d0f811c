package scheduler

import (
	"context"
	"time"
)

// Job is a unit of periodic work. Run must absorb its own failures.
type Job interface {
	Name() string
	Run(ctx context.Context)
}

// JobState is the lifecycle position of a scheduled job.
type JobState string

const (
	StateIdle    JobState = "idle"
	StateDue     JobState = "due"
	StateRunning JobState = "running"
)

// Schedule is the timing policy of one job.
type Schedule struct {
	Interval time.Duration
	Enabled  bool
	// RunNow makes the job eligible on the first tick instead of one interval after registration.
	RunNow bool
}

// JobStatus is a point-in-time copy of a job's scheduling state.
type JobStatus struct {
	Name        string        `json:"name"`
	State       JobState      `json:"state"`
	Enabled     bool          `json:"enabled"`
	Interval    time.Duration `json:"interval"`
	LastAttempt *time.Time    `json:"last_attempt,omitempty"`
	NextAttempt *time.Time    `json:"next_attempt,omitempty"`
	RunCount    int64         `json:"run_count"`
	LastRunTime time.Duration `json:"last_run_time"`
}

// entry carries the mutable schedule of one registered job.
type entry struct {
	job      Job
	schedule Schedule

	// anchor is the registration time until the first attempt, then the last attempt.
	anchor      time.Time
	attempted   bool
	running     bool
	runCount    int64
	lastRunTime time.Duration
}

func (e *entry) due(now time.Time) bool {
	if !e.schedule.Enabled || e.running {
		return false
	}
	if !e.attempted && e.schedule.RunNow {
		return true
	}
	return now.Sub(e.anchor) > e.schedule.Interval
}

func (e *entry) status(now time.Time) JobStatus {
	st := JobStatus{
		Name:        e.job.Name(),
		State:       StateIdle,
		Enabled:     e.schedule.Enabled,
		Interval:    e.schedule.Interval,
		RunCount:    e.runCount,
		LastRunTime: e.lastRunTime,
	}
	switch {
	case e.running:
		st.State = StateRunning
	case e.due(now):
		st.State = StateDue
	}
	if e.attempted {
		last := e.anchor
		st.LastAttempt = &last
	}
	if e.schedule.Enabled {
		next := e.anchor.Add(e.schedule.Interval)
		if !e.attempted && e.schedule.RunNow {
			next = e.anchor
		}
		st.NextAttempt = &next
	}
	return st
}
