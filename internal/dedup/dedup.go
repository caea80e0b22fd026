// Package dedup decides when two layoff records describe the same event.
//
// Two independent keys are used. Admission runs before insert and compares
// (company, headcount) with the source URL, ignoring the date entirely. The
// collapse key adds the calendar month of the layoff date and is used by the
// read path and by the maintenance sweep.
package dedup

import (
	"context"
	"fmt"
	"time"

	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/ports"
)

// Column names used by admission lookups.
const (
	ColumnSourceURL   = "source_url"
	ColumnCompanyName = "company_name"
	ColumnEmployees   = "employees_laid_off"
)

// CollapseKey identifies a logical event in the stored dataset.
type CollapseKey struct {
	Company      string
	Employees    int
	HasEmployees bool
	Year         int
	Month        time.Month
}

// KeyOf builds the collapse key; the month bucket is taken in UTC.
func KeyOf(event domain.LayoffEvent) CollapseKey {
	date := event.LayoffDate.UTC()
	n, ok := event.Employees()
	return CollapseKey{
		Company:      event.CompanyName,
		Employees:    n,
		HasEmployees: ok,
		Year:         date.Year(),
		Month:        date.Month(),
	}
}

// Collapse keeps the first event seen for each key and preserves input order.
func Collapse(events []domain.LayoffEvent) []domain.LayoffEvent {
	seen := make(map[CollapseKey]struct{}, len(events))
	unique := make([]domain.LayoffEvent, 0, len(events))
	for _, event := range events {
		key := KeyOf(event)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, event)
	}
	return unique
}

// SweepPlan returns the IDs of every event that repeats an earlier key.
// Callers pass events ordered oldest-first by creation time so the
// earliest-inserted record survives.
func SweepPlan(events []domain.LayoffEvent) []int64 {
	seen := make(map[CollapseKey]struct{}, len(events))
	var doomed []int64
	for _, event := range events {
		key := KeyOf(event)
		if _, ok := seen[key]; ok {
			doomed = append(doomed, event.ID)
			continue
		}
		seen[key] = struct{}{}
	}
	return doomed
}

// Verdict is the outcome of an admission check.
type Verdict string

const (
	Admitted       Verdict = "admitted"
	DuplicateURL   Verdict = "duplicate_url"
	DuplicateEvent Verdict = "duplicate_event"
)

// Admission runs the ingestion-time duplicate checks against the store.
type Admission struct {
	repo ports.LayoffRepository
}

// NewAdmission wires the repository used for lookups.
func NewAdmission(repo ports.LayoffRepository) *Admission {
	return &Admission{repo: repo}
}

// Admit rejects a candidate whose source URL is already stored, or whose
// (company, headcount) pair is already stored regardless of date.
func (a *Admission) Admit(ctx context.Context, candidate domain.LayoffEvent) (Verdict, error) {
	byURL, err := a.repo.Find(ctx, ports.Filter{
		Equals: map[string]any{ColumnSourceURL: candidate.SourceURL},
		Limit:  1,
	})
	if err != nil {
		return "", fmt.Errorf("lookup by url: %w", err)
	}
	if len(byURL) > 0 {
		return DuplicateURL, nil
	}

	var employees any
	if n, ok := candidate.Employees(); ok {
		employees = n
	}
	byEvent, err := a.repo.Find(ctx, ports.Filter{
		Equals: map[string]any{
			ColumnCompanyName: candidate.CompanyName,
			ColumnEmployees:   employees,
		},
		Limit: 1,
	})
	if err != nil {
		return "", fmt.Errorf("lookup by company and count: %w", err)
	}
	if len(byEvent) > 0 {
		return DuplicateEvent, nil
	}

	return Admitted, nil
}
