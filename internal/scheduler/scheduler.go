// Package scheduler runs the upstream poll on a fixed cadence.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one unit of periodic work. It receives the scheduler's context.
type Job func(ctx context.Context)

// Scheduler runs a single job every interval. A run that outlasts the
// interval delays the next one instead of overlapping it.
type Scheduler struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	job       Job
	logger    *slog.Logger
}

func New(interval time.Duration, job Job, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		interval:  interval,
		job:       job,
		logger:    logger,
	}
}

// Start schedules the job and returns immediately. The first run happens
// right away.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %s", s.interval)
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		s.job(ctx)
		if elapsed := time.Since(start); elapsed > s.interval {
			s.logger.Warn("poll overran its interval",
				"elapsed_ms", elapsed.Milliseconds(),
				"interval_ms", s.interval.Milliseconds(),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval", s.interval.String())
	return nil
}

// Stop cancels future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.logger.Info("scheduler stopped")
	}
}
