package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"codeberg.org/tubetrack/server/internal/logger"
)

// Scheduler triggers a run once a day at AnchorHour:00 local time. It does
// not own a timer: Start polls Due every CheckInterval, and after each run
// the next anchor is recomputed from the clock, so a missed or slow run
// never shifts the schedule.
type Scheduler struct {
	runner *Runner
	opts   Options

	mu   sync.RWMutex
	next time.Time
}

func New(runner *Runner, opts Options) *Scheduler {
	opts = opts.withDefaults()

	return &Scheduler{
		runner: runner,
		opts:   opts,
		next:   NextAnchor(opts.Clock.Now().In(opts.Location), opts.AnchorHour),
	}
}

// the next time a run is due
func (s *Scheduler) Next() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.next
}

// reports whether a run is due at now
func (s *Scheduler) Due(now time.Time) bool {
	return !now.Before(s.Next())
}

// runs a scheduled pass when due; returns whether one ran
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.Due(s.opts.Clock.Now()) {
		return false
	}

	report, err := s.runner.Run(ctx, TriggerScheduled)
	if errors.Is(err, ErrRunInProgress) {
		// try again on the next tick
		logger.Info("scheduled run deferred, another run is in progress")
		return false
	}

	if err != nil && report == nil {
		logger.ErrorErr(err, "scheduled snapshot run failed")
	}

	s.rearm()
	return true
}

// polls until ctx is done
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.opts.CheckInterval)
	defer ticker.Stop()

	logger.Info("snapshot scheduler started",
		"next_run", s.Next(),
		"check_interval", s.opts.CheckInterval,
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("snapshot scheduler stopped")
			return

		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *Scheduler) Status() Status {
	return Status{
		NextRun:    s.Next(),
		AnchorHour: s.opts.AnchorHour,
		Timezone:   s.opts.Location.String(),
		Running:    s.runner.Running(),
		LastRun:    s.runner.LastReport(),
	}
}

func (s *Scheduler) rearm() {
	next := NextAnchor(s.opts.Clock.Now().In(s.opts.Location), s.opts.AnchorHour)

	s.mu.Lock()
	s.next = next
	s.mu.Unlock()

	logger.Info("next snapshot run scheduled", "next_run", next)
}
