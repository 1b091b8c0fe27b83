package app

import (
	"context"
	"fmt"

	"taxiledger/internal/config"
	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/domain/masterdata"
	"taxiledger/internal/infrastructure/storage/postgres"
	"taxiledger/internal/infrastructure/storage/postgres/ledger_repo"
	"taxiledger/pkg/logger"
)

// OwnerRegistry adds master data records. Used by the seed binary.
type OwnerRegistry interface {
	Register(ctx context.Context, kind entity.AccountKind, name string) (id.ID, error)
}

// Runtime is a wired container together with the resources backing it.
type Runtime struct {
	*Container

	// Pool is nil for the memory backend.
	Pool *postgres.Pool

	// Idempotency is nil unless the postgres backend runs with idempotency enabled.
	Idempotency *postgres.IdempotencyStore

	Owners OwnerRegistry
}

// Open builds the runtime for the configured backend and bootstraps the cash
// register. appName identifies the binary in pg_stat_activity.
func Open(ctx context.Context, cfg *config.Config, appName string) (*Runtime, error) {
	var (
		rt  *Runtime
		err error
	)
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		rt, err = openPostgres(ctx, cfg, appName)
	case config.BackendMemory:
		rt = openMemory()
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	if _, err := rt.Cash.Bootstrap(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("bootstrap cash register: %w", err)
	}

	logger.Info(ctx, "ledger runtime ready", "backend", cfg.Storage.Backend)
	return rt, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, appName string) (*Runtime, error) {
	if cfg.Storage.MigrateOnStart {
		if err := postgres.RunMigrations(ctx, cfg.Storage.DSN); err != nil {
			return nil, err
		}
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.Storage.DSN)
	poolCfg.MaxConns = cfg.Storage.MaxConns
	poolCfg.MinConns = cfg.Storage.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg, appName)
	if err != nil {
		return nil, err
	}

	txm := postgres.NewTxManager(pool)
	dir := ledger_repo.NewDirectory(txm)

	rt := &Runtime{
		Container: NewPostgres(txm, dir, cfg.Storage.CloseConcurrency),
		Pool:      pool,
		Owners:    dir,
	}
	if cfg.Idempotency.Enabled {
		rt.Idempotency = postgres.NewIdempotencyStore(txm, cfg.Idempotency.TTL)
	}
	return rt, nil
}

func openMemory() *Runtime {
	dir := masterdata.NewStatic()
	return &Runtime{
		Container: NewMemory(dir),
		Owners:    staticOwners{dir},
	}
}

// Close releases the database pool.
func (r *Runtime) Close() {
	if r.Pool != nil {
		r.Pool.Close()
	}
}

type staticOwners struct {
	dir *masterdata.Static
}

func (s staticOwners) Register(_ context.Context, kind entity.AccountKind, name string) (id.ID, error) {
	return s.dir.Register(kind, name), nil
}
