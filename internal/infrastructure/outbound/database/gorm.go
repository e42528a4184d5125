package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"marites-post-service/internal/custom_errors"
	"marites-post-service/internal/infrastructure/config"
	"marites-post-service/internal/infrastructure/logger"
)

// OpenGorm builds the ORM engine on top of database/sql with the same pool
// options as the pgx pool. Liveness before hand-out is left to the pgx stdlib
// driver, which validates connections on reuse.
func OpenGorm(cfg config.Database, opts PoolOptions, log *logger.Logger) (*gorm.DB, error) {
	gormLogger := gormlogger.New(
		log.StdLogger(slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		log.Error("Failed to open gorm engine", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrConnection, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrConnection, err)
	}

	sqlDB.SetMaxIdleConns(max(opts.Size, 0))
	sqlDB.SetMaxOpenConns(opts.maxConns())
	if opts.Recycle > 0 {
		sqlDB.SetConnMaxLifetime(opts.Recycle)
	}

	log.Info("Gorm engine ready",
		slog.Int("max_idle_conns", max(opts.Size, 0)),
		slog.Int("max_open_conns", opts.maxConns()))
	return db, nil
}
