package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"LayoffTracker/internal/classifier"
	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/infrastructure/storage"
	"LayoffTracker/internal/ports"
)

type staticSource struct {
	articles []domain.Article
	err      error
	block    chan struct{}
	started  chan struct{}
}

func (s *staticSource) FetchCandidates(ctx context.Context) ([]domain.Article, error) {
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.articles, s.err
}

type recordingNotifier struct {
	digests []string
	err     error
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}

type countingRecorder struct {
	mu      sync.Mutex
	fetched int
	saved   int
	skipped map[string]int
	syncs   map[string]int
	sweeps  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{skipped: map[string]int{}, syncs: map[string]int{}, sweeps: map[string]int{}}
}

func (r *countingRecorder) ArticlesFetched(n int) {
	r.mu.Lock()
	r.fetched += n
	r.mu.Unlock()
}

func (r *countingRecorder) ArticleSkipped(reason string) {
	r.mu.Lock()
	r.skipped[reason]++
	r.mu.Unlock()
}

func (r *countingRecorder) EventSaved() {
	r.mu.Lock()
	r.saved++
	r.mu.Unlock()
}

func (r *countingRecorder) SyncFinished(outcome string, _ time.Duration) {
	r.mu.Lock()
	r.syncs[outcome]++
	r.mu.Unlock()
}

func (r *countingRecorder) SweepDeleted(sweep string, n int) {
	r.mu.Lock()
	r.sweeps[sweep] += n
	r.mu.Unlock()
}

type deniedLock struct{}

func (deniedLock) TryAcquire(context.Context) (func(), bool, error) { return nil, false, nil }

func acmeClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	rules := classifier.DefaultRuleSet()
	rules.Companies = append(rules.Companies, classifier.CompanyRule{Name: "Acme", Keywords: []string{"acme"}})
	c, err := classifier.New(rules)
	if err != nil {
		t.Fatalf("classifier.New: %v", err)
	}
	return c
}

func newArticle(title, url string) domain.Article {
	return domain.Article{
		Title:       title,
		URL:         url,
		PublishedAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestPipelineSyncAdmitsOneEventPerCompanyAndCount(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	recorder := newCountingRecorder()
	p := NewPipeline(PipelineDeps{
		Source: &staticSource{articles: []domain.Article{
			newArticle("Acme lays off 1,200 employees", "u1"),
			newArticle("Acme layoffs: 1,200 jobs cut", "u2"),
		}},
		Repository: repo,
		Classifier: acmeClassifier(t),
		Recorder:   recorder,
	})

	summary, err := p.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if summary.Message != "Sync complete" || summary.Saved != 1 || summary.Skipped != 1 || summary.TotalFetched != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	stored, err := repo.Find(context.Background(), ports.Filter{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(stored))
	}
	n, ok := stored[0].Employees()
	if stored[0].CompanyName != "Acme" || !ok || n != 1200 || stored[0].SourceURL != "u1" {
		t.Fatalf("unexpected event: %+v", stored[0])
	}
	if stored[0].Country != domain.CountryUSA || stored[0].Industry != domain.DefaultIndustry {
		t.Fatalf("unexpected classification: %+v", stored[0])
	}
	if recorder.saved != 1 || recorder.skipped[skipDuplicateEvent] != 1 || recorder.syncs["ok"] != 1 {
		t.Fatalf("unexpected recorder state: %+v", recorder)
	}
}

func TestPipelineSyncCountsGateRejections(t *testing.T) {
	t.Parallel()

	recorder := newCountingRecorder()
	p := NewPipeline(PipelineDeps{
		Source: &staticSource{articles: []domain.Article{
			newArticle("Unknown Corp lays off 300 workers", "a"),
			newArticle("Google may cut 500 jobs", "b"),
			newArticle("Microsoft layoffs hit teams", "c"),
			newArticle("Meta lays off 3,600 employees", "d"),
			newArticle("Meta lays off 3,600 employees", "d"),
		}},
		Repository: storage.NewMemoryRepository(),
		Recorder:   recorder,
	})

	summary, err := p.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if summary.TotalFetched != 4 {
		t.Fatalf("expected duplicate URL to be dropped before classification, got %d", summary.TotalFetched)
	}
	if summary.Saved != 1 || summary.Skipped != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	for _, reason := range []classifier.Rejection{classifier.RejectNoCompany, classifier.RejectUnconfirmed, classifier.RejectNoCount} {
		if recorder.skipped[string(reason)] != 1 {
			t.Fatalf("expected one %s rejection, got %v", reason, recorder.skipped)
		}
	}
}

func TestPipelineSyncSkipsStoredURL(t *testing.T) {
	t.Parallel()

	repo := storage.NewMemoryRepository()
	if _, err := repo.Create(context.Background(), domain.LayoffEvent{
		CompanyName:      "Google",
		LayoffDate:       time.Date(2023, 1, 20, 0, 0, 0, 0, time.UTC),
		EmployeesLaidOff: domain.IntPtr(12000),
		SourceURL:        "u1",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p := NewPipeline(PipelineDeps{
		Source:     &staticSource{articles: []domain.Article{newArticle("Amazon lays off 500 workers", "u1")}},
		Repository: repo,
	})

	summary, err := p.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if summary.Saved != 0 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestPipelineSyncRejectsOverlappingRuns(t *testing.T) {
	t.Parallel()

	source := &staticSource{block: make(chan struct{}), started: make(chan struct{})}
	p := NewPipeline(PipelineDeps{Source: source, Repository: storage.NewMemoryRepository()})

	done := make(chan error, 1)
	go func() {
		_, err := p.Sync(context.Background())
		done <- err
	}()
	<-source.started

	if _, err := p.Sync(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}

	close(source.block)
	if err := <-done; err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
}

func TestPipelineSyncRespectsDistributedLock(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{
		Source:     &staticSource{},
		Repository: storage.NewMemoryRepository(),
		Lock:       deniedLock{},
	})
	if _, err := p.Sync(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}
}

func TestPipelineSyncPropagatesFetchError(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("credentials missing")
	recorder := newCountingRecorder()
	p := NewPipeline(PipelineDeps{
		Source:     &staticSource{err: fetchErr},
		Repository: storage.NewMemoryRepository(),
		Recorder:   recorder,
	})

	if _, err := p.Sync(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if recorder.syncs["error"] != 1 {
		t.Fatalf("expected failed sync to be recorded, got %v", recorder.syncs)
	}
}

func TestPipelineSyncPublishesDigest(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{err: errors.New("telegram down")}
	p := NewPipeline(PipelineDeps{
		Source: &staticSource{articles: []domain.Article{
			newArticle("Swiggy lays off 400 employees in Bengaluru", "s1"),
		}},
		Repository: storage.NewMemoryRepository(),
		Notifier:   notifier,
	})

	summary, err := p.Sync(context.Background())
	if err != nil {
		t.Fatalf("notifier failure must not fail the sync: %v", err)
	}
	if summary.Saved != 1 || len(summary.Events) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(notifier.digests) != 1 {
		t.Fatalf("expected one digest, got %d", len(notifier.digests))
	}
	digest := notifier.digests[0]
	if !strings.Contains(digest, "Swiggy: 400 employees (India") || !strings.Contains(digest, "s1") {
		t.Fatalf("unexpected digest: %s", digest)
	}
}

func TestPipelineSyncWithoutSavesSkipsDigest(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	p := NewPipeline(PipelineDeps{
		Source:     &staticSource{articles: []domain.Article{newArticle("Weather is nice", "w")}},
		Repository: storage.NewMemoryRepository(),
		Notifier:   notifier,
	})
	if _, err := p.Sync(context.Background()); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if len(notifier.digests) != 0 {
		t.Fatalf("expected no digest, got %v", notifier.digests)
	}
}

// flakyRepository fails the first Create or Find call it sees.
type flakyRepository struct {
	*storage.MemoryRepository
	failCreate bool
	failFind   bool
}

func (r *flakyRepository) Create(ctx context.Context, event domain.LayoffEvent) (domain.LayoffEvent, error) {
	if r.failCreate {
		r.failCreate = false
		return domain.LayoffEvent{}, errors.New("insert failed")
	}
	return r.MemoryRepository.Create(ctx, event)
}

func (r *flakyRepository) Find(ctx context.Context, filter ports.Filter) ([]domain.LayoffEvent, error) {
	if r.failFind {
		r.failFind = false
		return nil, errors.New("lookup failed")
	}
	return r.MemoryRepository.Find(ctx, filter)
}

func TestPipelineSyncContinuesAfterStoreFailure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		repo *flakyRepository
	}{
		{"insert", &flakyRepository{MemoryRepository: storage.NewMemoryRepository(), failCreate: true}},
		{"admission lookup", &flakyRepository{MemoryRepository: storage.NewMemoryRepository(), failFind: true}},
	}

	for _, tc := range cases {
		recorder := newCountingRecorder()
		p := NewPipeline(PipelineDeps{
			Source: &staticSource{articles: []domain.Article{
				newArticle("Amazon lays off 500 workers", "u1"),
				newArticle("Meta lays off 3,600 employees", "u2"),
			}},
			Repository: tc.repo,
			Recorder:   recorder,
		})

		summary, err := p.Sync(context.Background())
		if err != nil {
			t.Fatalf("%s: Sync returned error: %v", tc.name, err)
		}
		if summary.Saved != 1 || summary.Skipped != 0 || summary.TotalFetched != 2 {
			t.Fatalf("%s: unexpected summary: %+v", tc.name, summary)
		}
		if len(summary.Events) != 1 || summary.Events[0].SourceURL != "u2" {
			t.Fatalf("%s: expected only u2 to be saved, got %+v", tc.name, summary.Events)
		}

		stored, err := tc.repo.MemoryRepository.Find(context.Background(), ports.Filter{})
		if err != nil {
			t.Fatalf("%s: Find: %v", tc.name, err)
		}
		if len(stored) != 1 || stored[0].CompanyName != "Meta" {
			t.Fatalf("%s: unexpected stored events: %+v", tc.name, stored)
		}
		if recorder.saved != 1 || len(recorder.skipped) != 0 || recorder.syncs["ok"] != 1 {
			t.Fatalf("%s: unexpected recorder state: %+v", tc.name, recorder)
		}
	}
}
