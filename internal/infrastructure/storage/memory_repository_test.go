package storage

import (
	"context"
	"testing"
	"time"

	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/ports"
)

func TestMemoryRepositoryFindAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepository()

	march := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	first, _ := repo.Create(ctx, domain.LayoffEvent{CompanyName: "Acme", LayoffDate: march, EmployeesLaidOff: domain.IntPtr(200), SourceURL: "u1"})
	second, _ := repo.Create(ctx, domain.LayoffEvent{CompanyName: "Acme", LayoffDate: april, EmployeesLaidOff: domain.IntPtr(300), SourceURL: "u2"})
	_, _ = repo.Create(ctx, domain.LayoffEvent{CompanyName: "Globex", LayoffDate: april, SourceURL: "u3"})

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("unexpected ids %d, %d", first.ID, second.ID)
	}

	byPair, err := repo.Find(ctx, ports.Filter{Equals: map[string]any{"company_name": "Acme", "employees_laid_off": 300}})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(byPair) != 1 || byPair[0].SourceURL != "u2" {
		t.Fatalf("unexpected match: %+v", byPair)
	}

	nullCount, err := repo.Find(ctx, ports.Filter{Equals: map[string]any{"employees_laid_off": nil}})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(nullCount) != 1 || nullCount[0].CompanyName != "Globex" {
		t.Fatalf("unexpected null match: %+v", nullCount)
	}

	newest, err := repo.Find(ctx, ports.Filter{Order: &ports.Order{Column: "layoff_date", Descending: true}, Limit: 1})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(newest) != 1 || !newest[0].LayoffDate.Equal(april) {
		t.Fatalf("unexpected newest: %+v", newest)
	}

	if err := repo.DeleteByIDs(ctx, []int64{first.ID, 42}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	all, _ := repo.Find(ctx, ports.Filter{})
	if len(all) != 2 {
		t.Fatalf("expected 2 events after delete, got %d", len(all))
	}

	if _, err := repo.Find(ctx, ports.Filter{Equals: map[string]any{"title": "x"}}); err == nil {
		t.Fatal("expected error for unknown column")
	}
}
