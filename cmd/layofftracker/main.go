package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"LayoffTracker/internal/app"
	"LayoffTracker/internal/config"
	"LayoffTracker/internal/logging"
)

func main() {
	once := flag.Bool("once", false, "run a single sync cycle and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}

	if *once {
		summary, err := application.SyncOnce(ctx)
		if err != nil {
			logger.Error("sync failed", "error", err)
			os.Exit(1)
		}
		logger.Info(summary.Message, "saved", summary.Saved, "skipped", summary.Skipped, "total_fetched", summary.TotalFetched)
		return
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
