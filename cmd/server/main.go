// Package main is the entry point for the ledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"taxiledger/internal/app"
	"taxiledger/internal/config"
	v1 "taxiledger/internal/infrastructure/http/v1"
	"taxiledger/internal/infrastructure/http/v1/middleware"
	"taxiledger/internal/infrastructure/messaging/amqp"
	"taxiledger/pkg/logger"
)

func main() {
	// .env is optional outside development
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
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

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting ledger server", "backend", cfg.Storage.Backend, "version", cfg.App.Version)

	rt, err := app.Open(ctx, cfg, "ledger-server")
	if err != nil {
		log.Fatalw("failed to open ledger", "error", err)
	}
	defer rt.Close()

	// --- Movement events ---
	if cfg.AMQP.Enabled() {
		client, err := amqp.NewClient(amqpConfig(cfg))
		if err != nil {
			log.Fatalw("failed to connect to AMQP", "error", err)
		}
		defer client.Close()

		amqp.PublishMovementEvents(rt.Movements.Hooks(), client)
		log.Infow("publishing movement events", "exchange", cfg.AMQP.Exchange, "routing_key", cfg.AMQP.EventRoutingKey)
	}

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Container: rt.Container,
		Logger:    log,
		Pool:      rt.Pool,
		Version:   cfg.App.Version,
	}
	// A nil *IdempotencyStore must not reach the interface field.
	if rt.Idempotency != nil {
		routerCfg.Idempotency = middleware.IdempotencyStore(rt.Idempotency)
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr, "idempotency", routerCfg.Idempotency != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func amqpConfig(cfg *config.Config) amqp.Config {
	return amqp.Config{
		URL:             cfg.AMQP.URL,
		Exchange:        cfg.AMQP.Exchange,
		JobQueue:        cfg.AMQP.JobQueue,
		EventRoutingKey: cfg.AMQP.EventRoutingKey,
	}
}
