package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/ports"
)

const layoffsTable = "layoffs"

var layoffColumns = []string{
	"id", "company_name", "layoff_date", "employees_laid_off",
	"country", "industry", "source_url", "created_at",
}

var orderableColumns = map[string]struct{}{
	"id":          {},
	"layoff_date": {},
	"created_at":  {},
}

var filterableColumns = map[string]struct{}{
	"id":                 {},
	"company_name":       {},
	"employees_laid_off": {},
	"country":            {},
	"industry":           {},
	"source_url":         {},
}

// PostgresRepository persists layoff events into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.LayoffRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Create inserts one event and returns it with store-assigned fields.
func (r *PostgresRepository) Create(ctx context.Context, event domain.LayoffEvent) (domain.LayoffEvent, error) {
	query, args, err := r.builder.
		Insert(layoffsTable).
		Columns("company_name", "layoff_date", "employees_laid_off", "country", "industry", "source_url").
		Values(event.CompanyName, event.LayoffDate, event.EmployeesLaidOff, event.Country, event.Industry, event.SourceURL).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return domain.LayoffEvent{}, fmt.Errorf("build insert: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&event.ID, &event.CreatedAt); err != nil {
		return domain.LayoffEvent{}, fmt.Errorf("insert layoff: %w", err)
	}
	return event, nil
}

// Find runs an equality-filtered select with optional order and limit.
func (r *PostgresRepository) Find(ctx context.Context, filter ports.Filter) ([]domain.LayoffEvent, error) {
	stmt := r.builder.Select(layoffColumns...).From(layoffsTable)

	if len(filter.Equals) > 0 {
		for column := range filter.Equals {
			if _, ok := filterableColumns[column]; !ok {
				return nil, fmt.Errorf("unsupported filter column %q", column)
			}
		}
		stmt = stmt.Where(sq.Eq(filter.Equals))
	}

	if filter.Order != nil {
		if _, ok := orderableColumns[filter.Order.Column]; !ok {
			return nil, fmt.Errorf("unsupported order column %q", filter.Order.Column)
		}
		direction := "ASC"
		if filter.Order.Descending {
			direction = "DESC"
		}
		stmt = stmt.OrderBy(filter.Order.Column + " " + direction)
	}

	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	return r.query(ctx, stmt)
}

// FindEmployeesAtLeast returns events whose headcount is >= threshold.
func (r *PostgresRepository) FindEmployeesAtLeast(ctx context.Context, threshold int) ([]domain.LayoffEvent, error) {
	stmt := r.builder.
		Select(layoffColumns...).
		From(layoffsTable).
		Where(sq.GtOrEq{"employees_laid_off": threshold})
	return r.query(ctx, stmt)
}

// DeleteByIDs removes the listed events in one statement.
func (r *PostgresRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := r.builder.Delete(layoffsTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete layoffs: %w", err)
	}
	return nil
}

func (r *PostgresRepository) query(ctx context.Context, stmt sq.SelectBuilder) ([]domain.LayoffEvent, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query layoffs: %w", err)
	}

	var events []domain.LayoffEvent
	for rows.Next() {
		var (
			event     domain.LayoffEvent
			employees sql.NullInt64
		)
		if err := rows.Scan(
			&event.ID, &event.CompanyName, &event.LayoffDate, &employees,
			&event.Country, &event.Industry, &event.SourceURL, &event.CreatedAt,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan layoff: %w", err)
		}
		if employees.Valid {
			event.EmployeesLaidOff = domain.IntPtr(int(employees.Int64))
		}
		events = append(events, event)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return events, nil
}
