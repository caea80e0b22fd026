package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestCronSchedulerInitialRun(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("@every 1h", 10*time.Millisecond, time.UTC, nil)
	fired := make(chan time.Time, 1)

	if err := s.Start(context.Background(), func(at time.Time) { fired <- at }); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("initial run did not fire")
	}
}

func TestCronSchedulerStopCancelsInitialRun(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("@every 1h", 200*time.Millisecond, nil, nil)
	fired := make(chan time.Time, 1)

	if err := s.Start(context.Background(), func(at time.Time) { fired <- at }); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	select {
	case <-fired:
		t.Fatal("job fired after Stop")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestCronSchedulerInvalidSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("every now and then", 0, nil, nil)
	if err := s.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}
