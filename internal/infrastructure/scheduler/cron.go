package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"LayoffTracker/internal/ports"
)

// CronScheduler runs a job on a cron spec plus once after an initial delay.
type CronScheduler struct {
	spec         string
	initialDelay time.Duration
	location     *time.Location
	logger       *slog.Logger

	mu    sync.Mutex
	cron  *cron.Cron
	timer *time.Timer
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
// A non-positive initialDelay disables the start-up run.
func NewCronScheduler(spec string, initialDelay time.Duration, loc *time.Location, logger *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CronScheduler{
		spec:         spec,
		initialDelay: initialDelay,
		location:     loc,
		logger:       logger,
	}
}

// Start registers the job and begins ticking. Calling Start twice is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	runner := cron.New(cron.WithLocation(c.location), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := runner.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		return fmt.Errorf("cron spec %q: %w", c.spec, err)
	}
	runner.Start()
	c.cron = runner
	c.logger.Info("cron started", "spec", c.spec, "initial_delay", c.initialDelay)

	if c.initialDelay > 0 {
		c.timer = time.AfterFunc(c.initialDelay, func() {
			if ctx.Err() != nil {
				return
			}
			job(time.Now().In(c.location))
		})
	}

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()

	return nil
}

// Stop cancels the pending start-up run and waits for running jobs up to ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner, timer := c.cron, c.timer
	c.cron, c.timer = nil, nil
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if runner == nil {
		return nil
	}

	done := runner.Stop()
	select {
	case <-done.Done():
		c.logger.Info("cron stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
