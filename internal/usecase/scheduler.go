package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"LayoffTracker/internal/ports"
)

// Scheduler wires the cron driver with the ingestion pipeline.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler. Job failures are
// logged and never stop the schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}
	return s.driver.Start(ctx, func(trigger time.Time) {
		s.runOnce(ctx, trigger)
	})
}

func (s *Scheduler) runOnce(ctx context.Context, trigger time.Time) {
	summary, err := s.pipeline.Sync(ctx)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		s.logger.Info("sync skipped, previous cycle still running", "trigger", trigger)
	case err != nil:
		s.logger.Error("scheduled sync failed", "trigger", trigger, "error", err)
	default:
		s.logger.Info("scheduled sync finished", "trigger", trigger, "saved", summary.Saved, "skipped", summary.Skipped)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
