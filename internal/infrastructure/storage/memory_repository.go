package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/ports"
)

// MemoryRepository keeps events in process memory. It backs local runs
// without Postgres and the package tests of the use cases.
type MemoryRepository struct {
	mu     sync.Mutex
	events []domain.LayoffEvent
	nextID int64
	now    func() time.Time
}

var _ ports.LayoffRepository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, now: time.Now}
}

// Create assigns an ID and creation time.
func (r *MemoryRepository) Create(_ context.Context, event domain.LayoffEvent) (domain.LayoffEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = r.nextID
	r.nextID++
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now().UTC()
	}
	r.events = append(r.events, event)
	return event, nil
}

// Find applies the equality filter, then ordering, then the limit.
func (r *MemoryRepository) Find(_ context.Context, filter ports.Filter) ([]domain.LayoffEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.LayoffEvent
	for _, event := range r.events {
		ok, err := matches(event, filter.Equals)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, event)
		}
	}

	if filter.Order != nil {
		less, err := lessFor(*filter.Order)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}

	if filter.Limit > 0 && uint64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// FindEmployeesAtLeast returns events whose known headcount is >= threshold.
func (r *MemoryRepository) FindEmployeesAtLeast(_ context.Context, threshold int) ([]domain.LayoffEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.LayoffEvent
	for _, event := range r.events {
		if n, ok := event.Employees(); ok && n >= threshold {
			out = append(out, event)
		}
	}
	return out, nil
}

// DeleteByIDs removes every listed event; unknown IDs are ignored.
func (r *MemoryRepository) DeleteByIDs(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doomed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}
	kept := r.events[:0]
	for _, event := range r.events {
		if _, ok := doomed[event.ID]; !ok {
			kept = append(kept, event)
		}
	}
	r.events = kept
	return nil
}

func matches(event domain.LayoffEvent, equals map[string]any) (bool, error) {
	for column, want := range equals {
		switch column {
		case "id":
			if event.ID != toInt64(want) {
				return false, nil
			}
		case "company_name":
			if event.CompanyName != want {
				return false, nil
			}
		case "source_url":
			if event.SourceURL != want {
				return false, nil
			}
		case "country":
			if event.Country != want {
				return false, nil
			}
		case "industry":
			if event.Industry != want {
				return false, nil
			}
		case "employees_laid_off":
			n, ok := event.Employees()
			if want == nil {
				if ok {
					return false, nil
				}
				continue
			}
			if !ok || int64(n) != toInt64(want) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported filter column %q", column)
		}
	}
	return true, nil
}

func lessFor(order ports.Order) (func(a, b domain.LayoffEvent) bool, error) {
	var asc func(a, b domain.LayoffEvent) bool
	switch order.Column {
	case "layoff_date":
		asc = func(a, b domain.LayoffEvent) bool { return a.LayoffDate.Before(b.LayoffDate) }
	case "created_at":
		asc = func(a, b domain.LayoffEvent) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "id":
		asc = func(a, b domain.LayoffEvent) bool { return a.ID < b.ID }
	default:
		return nil, fmt.Errorf("unsupported order column %q", order.Column)
	}
	if order.Descending {
		return func(a, b domain.LayoffEvent) bool { return asc(b, a) }, nil
	}
	return asc, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case int32:
		return int64(n)
	case *int:
		if n != nil {
			return int64(*n)
		}
	}
	return -1
}
