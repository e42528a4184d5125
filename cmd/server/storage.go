package main

import (
	"context"
	"fmt"
	"log/slog"

	ports "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/infrastructure/config"
	http_server "marites-post-service/internal/infrastructure/inbound/http"
	"marites-post-service/internal/infrastructure/logger"
	"marites-post-service/internal/infrastructure/outbound/database"
	gorm_uow "marites-post-service/internal/infrastructure/outbound/repository/gorm"
	"marites-post-service/internal/infrastructure/outbound/repository/memory"
	post_memory "marites-post-service/internal/infrastructure/outbound/repository/post/memory"
	"marites-post-service/internal/infrastructure/outbound/repository/postgres"
)

type storage struct {
	uow    ports.UnitOfWork
	health http_server.HealthCheckFunc
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger, metrics ports.MetricsProvider) (*storage, error) {
	backend := cfg.Storage.Backend
	log.Info("Opening storage", slog.String("backend", backend))

	if backend != config.BackendMemory && cfg.Database.MigrationsEnabled {
		if err := postgres.RunMigrations(cfg.Database.DSN(), log); err != nil {
			return nil, err
		}
	}

	opts := database.PoolOptionsFromConfig(cfg.Database.Pool)

	switch backend {
	case config.BackendMemory:
		return &storage{
			uow:    memory.NewMemoryUOW(post_memory.NewPostRepository(log)),
			health: func(ctx context.Context) error { return nil },
			close:  func() {},
		}, nil

	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, opts, log)
		if err != nil {
			return nil, err
		}
		connector := database.NewPoolConnector(pool, opts.Timeout, metrics)
		return &storage{
			uow:    postgres.NewPostgresUOW(connector, log, metrics),
			health: pool.Ping,
			close:  pool.Close,
		}, nil

	case config.BackendPostgresDirect:
		factory := database.NewConnectionFactory(cfg.Database, log)
		return &storage{
			uow: postgres.NewPostgresUOW(factory, log, metrics),
			health: func(ctx context.Context) error {
				conn, err := factory.Acquire(ctx)
				if err != nil {
					return err
				}
				return conn.Release(ctx)
			},
			close: func() {},
		}, nil

	case config.BackendGorm:
		db, err := database.OpenGorm(cfg.Database, opts, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &storage{
			uow:    gorm_uow.NewGormUOW(db, log, metrics),
			health: sqlDB.PingContext,
			close: func() {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close gorm engine", slog.String("error", err.Error()))
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
