package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marites-post-service/internal/custom_errors"
	ports "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/infrastructure/config"
)

// PoolOptions are the pooled engine settings. Size connections are kept warm
// and up to MaxOverflow more are opened under load.
type PoolOptions struct {
	Size        int
	MaxOverflow int
	Timeout     time.Duration
	Recycle     time.Duration
	PrePing     bool
}

func PoolOptionsFromConfig(p config.Pool) PoolOptions {
	return PoolOptions{
		Size:        p.Size,
		MaxOverflow: p.MaxOverflow,
		Timeout:     p.Timeout,
		Recycle:     p.Recycle,
		PrePing:     p.PrePing,
	}
}

func (o PoolOptions) maxConns() int {
	n := o.Size + o.MaxOverflow
	if n < 1 {
		return 1
	}
	return n
}

// BuildPoolConfig maps the options onto a pgxpool config without connecting.
func BuildPoolConfig(dsn string, opts PoolOptions) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrConnection, err)
	}

	poolCfg.MaxConns = int32(opts.maxConns())
	poolCfg.MinConns = int32(min(max(opts.Size, 0), opts.maxConns()))
	if opts.Recycle > 0 {
		poolCfg.MaxConnLifetime = opts.Recycle
	}
	if opts.PrePing {
		poolCfg.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
			return conn.Ping(ctx) == nil
		}
	}

	return poolCfg, nil
}

// NewPool creates the pool and checks it with a single ping.
func NewPool(ctx context.Context, cfg config.Database, opts PoolOptions, log ports.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg.DSN(), opts)
	if err != nil {
		log.Error("Invalid database pool parameters", slog.String("error", err.Error()))
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("Failed to create database pool", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrConnection, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Error("Failed to ping database pool",
			slog.String("host", poolCfg.ConnConfig.Host),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrConnection, err)
	}

	log.Info("Database pool ready",
		slog.String("host", poolCfg.ConnConfig.Host),
		slog.Int("min_conns", int(poolCfg.MinConns)),
		slog.Int("max_conns", int(poolCfg.MaxConns)),
		slog.Duration("max_conn_lifetime", poolCfg.MaxConnLifetime))
	return pool, nil
}

// PoolConnector hands one pooled connection to each session.
type PoolConnector struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	metrics ports.MetricsProvider
}

func NewPoolConnector(pool *pgxpool.Pool, timeout time.Duration, metrics ports.MetricsProvider) *PoolConnector {
	return &PoolConnector{pool: pool, timeout: timeout, metrics: metrics}
}

func (p *PoolConnector) Acquire(ctx context.Context) (Conn, error) {
	acquireCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	conn, err := p.pool.Acquire(acquireCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrConnection, err)
	}
	p.reportActive()
	return &pooledConn{conn: conn, connector: p}, nil
}

func (p *PoolConnector) reportActive() {
	p.metrics.SetActiveConnections(int(p.pool.Stat().AcquiredConns()))
}

type pooledConn struct {
	conn      *pgxpool.Conn
	connector *PoolConnector
}

func (c *pooledConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.conn.Begin(ctx)
}

func (c *pooledConn) Release(ctx context.Context) error {
	c.conn.Release()
	c.connector.reportActive()
	return nil
}
