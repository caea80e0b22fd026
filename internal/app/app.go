package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"LayoffTracker/internal/classifier"
	"LayoffTracker/internal/config"
	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/infrastructure/httpapi"
	"LayoffTracker/internal/infrastructure/lock"
	"LayoffTracker/internal/infrastructure/parser"
	"LayoffTracker/internal/infrastructure/scheduler"
	"LayoffTracker/internal/infrastructure/storage"
	"LayoffTracker/internal/infrastructure/telegram"
	"LayoffTracker/internal/logging"
	"LayoffTracker/internal/metrics"
	"LayoffTracker/internal/ports"
	"LayoffTracker/internal/scanner"
	"LayoffTracker/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *httpapi.Server
	closers   []func() error
}

// New connects the configured stores and builds every component.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	repo, err := a.openRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	rules, err := loadClassifier(cfg.Classifier)
	if err != nil {
		a.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	scanners := scanner.NewRegistry()
	scanners.Register(parser.NewNewsAPIScanner(nil, cfg.NewsAPI, baseLogger.With("component", "scanner.newsapi")))
	source := parser.NewStrategySource(scanners, cfg.Sources, baseLogger.With("component", "source"))

	var syncLock ports.SyncLock
	if cfg.Redis.URL != "" {
		client, err := lock.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		syncLock = lock.NewRedisLease(client, cfg.Redis.LockKey, cfg.Redis.LockTTL, baseLogger.With("component", "lock"))
	}

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram, nil); tg.Enabled() {
		notifier = tg
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repo,
		Classifier: rules,
		Notifier:   notifier,
		Lock:       syncLock,
		Recorder:   recorder,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewCronScheduler(
		cfg.Scheduler.CronExpression,
		cfg.Scheduler.InitialDelay,
		cfg.Scheduler.Location(),
		baseLogger.With("component", "cron"),
	)
	a.scheduler = usecase.NewScheduler(driver, a.pipeline, baseLogger.With("component", "scheduler"))

	gin.SetMode(gin.ReleaseMode)
	handler := httpapi.NewHandler(
		a.pipeline,
		usecase.NewQueryAssembler(repo),
		usecase.NewMaintenance(repo, recorder, baseLogger.With("component", "maintenance")),
		baseLogger.With("component", "http"),
	)
	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		Gatherer:    registry,
		Logger:      baseLogger.With("component", "http"),
	})
	a.server = httpapi.NewServer(cfg.Server.Port, router, cfg.Server.ShutdownTimeout, baseLogger.With("component", "http"))

	return a, nil
}

func (a *Application) openRepository(ctx context.Context) (ports.LayoffRepository, error) {
	switch a.cfg.Database.Driver {
	case config.DriverMemory:
		a.logger.Warn("using in-memory event store; data is lost on exit")
		return storage.NewMemoryRepository(), nil
	case config.DriverPostgres, "":
		db, err := storage.Open(ctx, a.cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return storage.NewPostgresRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", a.cfg.Database.Driver)
	}
}

func loadClassifier(cfg config.ClassifierConfig) (*classifier.Classifier, error) {
	rules := classifier.DefaultRuleSet()
	if cfg.RulesFile != "" {
		loaded, err := classifier.LoadRuleSet(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	c, err := classifier.New(rules)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}
	return c, nil
}

// Run starts the scheduler and serves HTTP until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serveErr := a.server.Run(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}

// SyncOnce runs a single ingestion cycle without the scheduler or HTTP API.
func (a *Application) SyncOnce(ctx context.Context) (domain.SyncSummary, error) {
	defer a.Close()
	return a.pipeline.Sync(ctx)
}

// Close releases database and Redis connections.
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close resource", "error", err)
		}
	}
	a.closers = nil
}
