// Package main is the entry point for the ledger background worker.
// It consumes period job triggers from AMQP and runs periodic housekeeping.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"taxiledger/internal/app"
	"taxiledger/internal/config"
	"taxiledger/internal/infrastructure/messaging/amqp"
	"taxiledger/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := errors.Join(cfg.Validate(), cfg.RequireAMQP()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log.WithComponent("worker"))

	log.Infow("starting ledger worker", "backend", cfg.Storage.Backend, "queue", cfg.AMQP.JobQueue)

	rt, err := app.Open(ctx, cfg, "ledger-worker")
	if err != nil {
		log.Fatalw("failed to open ledger", "error", err)
	}
	defer rt.Close()

	client, err := amqp.NewClient(amqp.Config{
		URL:             cfg.AMQP.URL,
		Exchange:        cfg.AMQP.Exchange,
		JobQueue:        cfg.AMQP.JobQueue,
		EventRoutingKey: cfg.AMQP.EventRoutingKey,
	})
	if err != nil {
		log.Fatalw("failed to connect to AMQP", "error", err)
	}
	defer client.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeJobsWithRetry(ctx, rt.Jobs.Dispatch)
	})

	if rt.Idempotency != nil {
		g.Go(func() error {
			every(ctx, cfg.Worker.CleanupInterval, func(ctx context.Context) {
				removed, err := rt.Idempotency.CleanupExpired(ctx)
				if err != nil {
					logger.Error(ctx, "idempotency cleanup failed", "error", err)
					return
				}
				if removed > 0 {
					logger.Info(ctx, "cleaned up idempotency keys", "count", removed)
				}
			})
			return nil
		})
	}

	if rt.Pool != nil {
		g.Go(func() error {
			every(ctx, cfg.Worker.StatsInterval, rt.Pool.LogStats)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("worker stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}

// every runs fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
