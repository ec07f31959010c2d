package usecase

import (
	"context"
	"log/slog"
	"time"

	"PizzaScanner/internal/calendar"
	"PizzaScanner/internal/ports"
)

// Scheduler wires the cron-like driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring prefetches.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the daily prefetch with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}
	return s.driver.Start(ctx, func(trigger time.Time) {
		s.Prefetch(ctx, trigger)
	})
}

// Prefetch warms the cache with the menu of the trigger's day.
func (s *Scheduler) Prefetch(ctx context.Context, trigger time.Time) {
	start, end, ok := calendar.WeekWindow(trigger)
	if !ok {
		s.log(slog.LevelDebug, "closed today, skipping prefetch", "trigger", trigger)
		return
	}

	result, err := s.pipeline.Menu(ctx, start, end)
	if err != nil {
		s.log(slog.LevelError, "prefetch menu", "start", start, "error", err)
		return
	}
	s.log(slog.LevelInfo, "menu prefetched", "start", start, "cached", result.Cached)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

func (s *Scheduler) log(level slog.Level, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Log(context.Background(), level, msg, args...)
	}
}
