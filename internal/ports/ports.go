package ports

import (
	"context"
	"time"

	"LayoffTracker/internal/domain"
)

// ArticleSource pulls candidate articles from upstream providers.
type ArticleSource interface {
	FetchCandidates(ctx context.Context) ([]domain.Article, error)
}

// Order names a column and direction for repository queries.
type Order struct {
	Column     string
	Descending bool
}

// Filter describes an equality lookup with optional ordering and limit.
// A zero Filter matches every event.
type Filter struct {
	Equals map[string]any
	Order  *Order
	Limit  uint64
}

// LayoffRepository persists layoff events.
type LayoffRepository interface {
	Create(ctx context.Context, event domain.LayoffEvent) (domain.LayoffEvent, error)
	Find(ctx context.Context, filter Filter) ([]domain.LayoffEvent, error)
	FindEmployeesAtLeast(ctx context.Context, threshold int) ([]domain.LayoffEvent, error)
	DeleteByIDs(ctx context.Context, ids []int64) error
}

// Notifier streams digests of newly admitted events to chat channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// SyncLock guards against overlapping ingestion cycles.
// TryAcquire returns ok=false without error when the lock is held elsewhere.
type SyncLock interface {
	TryAcquire(ctx context.Context) (release func(), ok bool, err error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// Recorder captures ingestion and maintenance counters.
type Recorder interface {
	ArticlesFetched(n int)
	ArticleSkipped(reason string)
	EventSaved()
	SyncFinished(outcome string, elapsed time.Duration)
	SweepDeleted(sweep string, n int)
}
