package main

import (
	"fmt"
	"os"

	"github.com/reeshuffled/dodue/internal/config"
	"github.com/reeshuffled/dodue/internal/logging"
	"github.com/reeshuffled/dodue/internal/storage"
	"github.com/reeshuffled/dodue/internal/store"
	"github.com/reeshuffled/dodue/internal/ui"
)

func main() {
	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.Open(cfg.LogPath)
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	st, err := store.Open(db, store.WithLogger(logger))
	if err != nil {
		fmt.Printf("failed to load tasks: %v\n", err)
		os.Exit(1)
	}

	if err := ui.Run(st, cfg, logger); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
