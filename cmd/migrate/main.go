package main

import (
	"context"
	"flag"
	"os"
	"time"

	"LayoffTracker/internal/config"
	"LayoffTracker/internal/infrastructure/storage"
	"LayoffTracker/pkg/logger"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding the SQL migrations")
	flag.Parse()

	log := logger.New("migrate")
	os.Exit(run(log, flag.Arg(0), *dir))
}

func run(log *logger.Logger, direction, dir string) int {
	if direction != storage.MigrateUp && direction != storage.MigrateDown {
		log.Printf("usage: migrate [-dir migrations] <up|down>")
		return 1
	}

	cfg := config.Load()
	if cfg.Database.Driver == config.DriverMemory {
		log.Printf("database driver is %q; nothing to migrate", cfg.Database.Driver)
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		log.Printf("connect: %v", err)
		return 1
	}
	defer db.Close()

	changed, err := storage.Migrate(db, dir, direction)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	if !changed {
		log.Printf("no migrations to apply")
		return 0
	}
	log.Printf("migration %s completed", direction)
	return 0
}
