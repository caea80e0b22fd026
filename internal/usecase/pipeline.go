package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"LayoffTracker/internal/classifier"
	"LayoffTracker/internal/dedup"
	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/ports"
)

// ErrSyncInProgress is returned when another ingestion cycle holds the guard.
var ErrSyncInProgress = errors.New("sync already in progress")

// Skip reasons reported alongside classifier rejections.
const (
	skipDuplicateURL   = "duplicate_url"
	skipDuplicateEvent = "duplicate_event"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Repository ports.LayoffRepository
	Classifier *classifier.Classifier
	Notifier   ports.Notifier
	Lock       ports.SyncLock
	Recorder   ports.Recorder
	Logger     *slog.Logger
}

// Pipeline implements the layoff ingestion workflow.
type Pipeline struct {
	source     ports.ArticleSource
	repository ports.LayoffRepository
	classifier *classifier.Classifier
	admission  *dedup.Admission
	notifier   ports.Notifier
	lock       ports.SyncLock
	recorder   ports.Recorder
	logger     *slog.Logger

	running sync.Mutex
	now     func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	rules := deps.Classifier
	if rules == nil {
		rules = classifier.MustDefault()
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		classifier: rules,
		admission:  dedup.NewAdmission(deps.Repository),
		notifier:   deps.Notifier,
		lock:       deps.Lock,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Sync runs one ingestion cycle. Overlapping calls fail fast with
// ErrSyncInProgress instead of waiting.
func (p *Pipeline) Sync(ctx context.Context) (domain.SyncSummary, error) {
	if !p.running.TryLock() {
		return domain.SyncSummary{}, ErrSyncInProgress
	}
	defer p.running.Unlock()

	if p.lock != nil {
		release, ok, err := p.lock.TryAcquire(ctx)
		if err != nil {
			return domain.SyncSummary{}, fmt.Errorf("acquire sync lock: %w", err)
		}
		if !ok {
			return domain.SyncSummary{}, ErrSyncInProgress
		}
		defer release()
	}

	started := p.now()
	summary, err := p.run(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.recorder.SyncFinished(outcome, p.now().Sub(started))
	if err != nil {
		return domain.SyncSummary{}, err
	}

	p.publish(ctx, summary.Events)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context) (domain.SyncSummary, error) {
	if p.source == nil || p.repository == nil {
		return domain.SyncSummary{}, fmt.Errorf("pipeline is not configured")
	}

	p.transition(domain.StateFetching)
	fetched, err := p.source.FetchCandidates(ctx)
	if err != nil {
		return domain.SyncSummary{}, fmt.Errorf("fetch candidates: %w", err)
	}

	p.transition(domain.StateDeduplicatingArticles)
	articles := uniqueByURL(fetched)
	p.recorder.ArticlesFetched(len(articles))
	p.logger.Info("fetched unique articles", "raw", len(fetched), "unique", len(articles))

	p.transition(domain.StateClassifying)
	candidates := make([]domain.LayoffEvent, 0, len(articles))
	summary := domain.SyncSummary{Message: "Sync complete", TotalFetched: len(articles)}
	for _, article := range articles {
		result, rejection := p.classifier.Classify(article)
		if rejection != classifier.Accepted {
			summary.Skipped++
			p.recorder.ArticleSkipped(string(rejection))
			continue
		}
		candidates = append(candidates, domain.LayoffEvent{
			CompanyName:      result.Company,
			LayoffDate:       article.PublishedAt,
			EmployeesLaidOff: domain.IntPtr(result.Employees),
			Country:          result.Country,
			Industry:         result.Industry,
			SourceURL:        article.URL,
		})
	}

	p.transition(domain.StateAdmitting)
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return domain.SyncSummary{}, err
		}

		verdict, err := p.admission.Admit(ctx, candidate)
		if err != nil {
			p.logger.Error("admission check failed", "company", candidate.CompanyName, "url", candidate.SourceURL, "error", err)
			continue
		}

		switch verdict {
		case dedup.DuplicateURL:
			summary.Skipped++
			p.recorder.ArticleSkipped(skipDuplicateURL)
			continue
		case dedup.DuplicateEvent:
			summary.Skipped++
			p.recorder.ArticleSkipped(skipDuplicateEvent)
			n, _ := candidate.Employees()
			p.logger.Info("duplicate event", "company", candidate.CompanyName, "employees", n)
			continue
		}

		saved, err := p.repository.Create(ctx, candidate)
		if err != nil {
			p.logger.Error("insert failed", "company", candidate.CompanyName, "url", candidate.SourceURL, "error", err)
			continue
		}
		n, _ := saved.Employees()
		p.logger.Info("event saved", "company", saved.CompanyName, "employees", n, "country", saved.Country, "industry", saved.Industry)
		summary.Saved++
		summary.Events = append(summary.Events, saved)
		p.recorder.EventSaved()
	}

	p.transition(domain.StateDone)
	p.logger.Info("sync done", "saved", summary.Saved, "skipped", summary.Skipped, "total_fetched", summary.TotalFetched)
	return summary, nil
}

func (p *Pipeline) transition(state domain.SyncState) {
	p.logger.Debug("sync state", "state", string(state))
}

func (p *Pipeline) publish(ctx context.Context, events []domain.LayoffEvent) {
	if p.notifier == nil || len(events) == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, buildDigestMessage(events)); err != nil {
		p.logger.Warn("publish digest failed", "error", err)
	}
}

// uniqueByURL keeps the first article for every URL.
func uniqueByURL(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if _, ok := seen[article.URL]; ok {
			continue
		}
		seen[article.URL] = struct{}{}
		unique = append(unique, article)
	}
	return unique
}

func buildDigestMessage(events []domain.LayoffEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d new layoff event(s)\n\n", len(events))
	for _, event := range events {
		n, _ := event.Employees()
		fmt.Fprintf(&b, "- %s: %d employees (%s, %s)\n%s\n\n",
			event.CompanyName,
			n,
			event.Country,
			event.Industry,
			event.SourceURL)
	}
	return b.String()
}

type nopRecorder struct{}

func (nopRecorder) ArticlesFetched(int) {}
func (nopRecorder) ArticleSkipped(string) {}
func (nopRecorder) EventSaved() {}
func (nopRecorder) SyncFinished(string, time.Duration) {}
func (nopRecorder) SweepDeleted(string, int) {}
