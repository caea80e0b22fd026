package usecase

import (
	"context"
	"fmt"

	"LayoffTracker/internal/dedup"
	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/ports"
)

// QueryAssembler serves the public list of layoff events.
type QueryAssembler struct {
	repository ports.LayoffRepository
}

// NewQueryAssembler wires the event store.
func NewQueryAssembler(repo ports.LayoffRepository) *QueryAssembler {
	return &QueryAssembler{repository: repo}
}

// List returns every stored event newest-first by layoff date, with repeats
// of the same company, headcount and month collapsed to the newest one.
func (q *QueryAssembler) List(ctx context.Context) ([]domain.LayoffEvent, error) {
	events, err := q.repository.Find(ctx, ports.Filter{
		Order: &ports.Order{Column: "layoff_date", Descending: true},
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return dedup.Collapse(events), nil
}
