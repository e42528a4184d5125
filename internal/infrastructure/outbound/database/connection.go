package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"marites-post-service/internal/custom_errors"
	ports "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/infrastructure/config"
)

// Connect opens a single connection. There is no retry.
func Connect(ctx context.Context, cfg config.Database, log ports.Logger) (*pgx.Conn, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		log.Error("Invalid database connection parameters", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrConnection, err)
	}

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		log.Error("Failed to connect to database",
			slog.String("host", connCfg.Host),
			slog.String("database", connCfg.Database),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrConnection, err)
	}

	log.Info("Connected to database",
		slog.String("host", connCfg.Host),
		slog.String("database", connCfg.Database))
	return conn, nil
}

// ConnectionFactory dials a new connection for every session and closes it on
// release.
type ConnectionFactory struct {
	cfg config.Database
	log ports.Logger
}

func NewConnectionFactory(cfg config.Database, log ports.Logger) *ConnectionFactory {
	return &ConnectionFactory{cfg: cfg, log: log}
}

func (f *ConnectionFactory) Acquire(ctx context.Context) (Conn, error) {
	conn, err := Connect(ctx, f.cfg, f.log)
	if err != nil {
		return nil, err
	}
	return &directConn{conn: conn}, nil
}

type directConn struct {
	conn *pgx.Conn
}

func (c *directConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.conn.Begin(ctx)
}

func (c *directConn) Release(ctx context.Context) error {
	return c.conn.Close(ctx)
}
