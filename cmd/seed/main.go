// Package main seeds a development ledger with owners, accounts and movement types.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"taxiledger/internal/app"
	"taxiledger/internal/config"
	"taxiledger/pkg/logger"
)

func main() {
	file := flag.String("file", "", "YAML dataset (defaults to the built-in demo data)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)

	if cfg.Storage.Backend != config.BackendPostgres {
		log.Warnw("seeding the memory backend; data is discarded on exit", "backend", cfg.Storage.Backend)
	}

	data := []byte(defaultDataset)
	if *file != "" {
		data, err = os.ReadFile(*file)
		if err != nil {
			log.Fatalw("failed to read dataset", "file", *file, "error", err)
		}
	}
	ds, err := parseDataset(data)
	if err != nil {
		log.Fatalw("invalid dataset", "error", err)
	}

	rt, err := app.Open(ctx, cfg, "ledger-seed")
	if err != nil {
		log.Fatalw("failed to open ledger", "error", err)
	}
	defer rt.Close()

	sum, err := ds.Apply(ctx, rt)
	if err != nil {
		log.Fatalw("failed to seed ledger", "error", err)
	}

	log.Infow("seeding completed successfully",
		"accounts", sum.Accounts,
		"types", sum.Types,
		"skipped_types", sum.SkippedTypes,
	)
}
