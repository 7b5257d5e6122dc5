package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/config"
	"github.com/javiermolinar/lifecoach/internal/db"
	"github.com/javiermolinar/lifecoach/internal/logger"
	"github.com/javiermolinar/lifecoach/internal/scheduler"
	"github.com/javiermolinar/lifecoach/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		Debug: cfg.Log.Debug,
	}); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	store, err := db.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = store.Close() }()

	sched, err := scheduler.New(cfg.Schedule.DayStart, cfg.Schedule.DayEnd)
	if err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	app := ui.NewApp(agenda.New(store, sched), cfg)
	return app.Execute()
}
