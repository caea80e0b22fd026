package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"LayoffTracker/internal/classifier"
	"LayoffTracker/internal/dedup"
	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/ports"
)

// Sweep names reported to the recorder.
const (
	SweepDuplicates = "duplicates"
	SweepOversized  = "oversized"
)

// Maintenance removes stored events that the read path would hide or that
// carry an implausible headcount.
type Maintenance struct {
	repository ports.LayoffRepository
	recorder   ports.Recorder
	logger     *slog.Logger
}

// NewMaintenance wires the event store; recorder and logger may be nil.
func NewMaintenance(repo ports.LayoffRepository, recorder ports.Recorder, logger *slog.Logger) *Maintenance {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Maintenance{repository: repo, recorder: recorder, logger: logger}
}

// CleanupDuplicates deletes every event whose collapse key was already taken
// by an earlier-inserted event. Running it twice deletes nothing the second time.
func (m *Maintenance) CleanupDuplicates(ctx context.Context) (domain.CleanupResult, error) {
	events, err := m.repository.Find(ctx, ports.Filter{
		Order: &ports.Order{Column: "created_at"},
	})
	if err != nil {
		return domain.CleanupResult{}, fmt.Errorf("load events: %w", err)
	}

	doomed := dedup.SweepPlan(events)
	if len(doomed) > 0 {
		if err := m.repository.DeleteByIDs(ctx, doomed); err != nil {
			return domain.CleanupResult{}, fmt.Errorf("delete duplicates: %w", err)
		}
	}

	m.recorder.SweepDeleted(SweepDuplicates, len(doomed))
	m.logger.Info("duplicate cleanup done", "scanned", len(events), "deleted", len(doomed))
	return domain.CleanupResult{Message: "Cleanup complete", Deleted: len(doomed)}, nil
}

// CleanupOversized deletes events reporting a headcount at or above the
// classifier's upper bound.
func (m *Maintenance) CleanupOversized(ctx context.Context) (domain.CleanupResult, error) {
	events, err := m.repository.FindEmployeesAtLeast(ctx, classifier.MaxEmployees)
	if err != nil {
		return domain.CleanupResult{}, fmt.Errorf("load oversized events: %w", err)
	}

	ids := make([]int64, 0, len(events))
	for _, event := range events {
		n, _ := event.Employees()
		m.logger.Info("removing oversized event", "id", event.ID, "company", event.CompanyName, "employees", n)
		ids = append(ids, event.ID)
	}

	if len(ids) > 0 {
		if err := m.repository.DeleteByIDs(ctx, ids); err != nil {
			return domain.CleanupResult{}, fmt.Errorf("delete oversized events: %w", err)
		}
	}

	m.recorder.SweepDeleted(SweepOversized, len(ids))
	return domain.CleanupResult{Message: "Large entries cleanup complete", Deleted: len(ids)}, nil
}
