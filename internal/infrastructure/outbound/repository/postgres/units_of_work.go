package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"marites-post-service/internal/custom_errors"
	ports "marites-post-service/internal/domain/ports/output"
	post_repository "marites-post-service/internal/domain/ports/output/post"
	"marites-post-service/internal/infrastructure/outbound/database"
	post_repository_postgres "marites-post-service/internal/infrastructure/outbound/repository/post/postgres"
)

type PostgresUnitOfWork struct {
	connector database.Connector
	log       ports.Logger
	metrics   ports.MetricsProvider
}

func NewPostgresUOW(connector database.Connector, log ports.Logger, metrics ports.MetricsProvider) ports.UnitOfWork {
	return &PostgresUnitOfWork{connector: connector, log: log, metrics: metrics}
}

func (uow *PostgresUnitOfWork) Begin(ctx context.Context) (ports.Transaction, error) {
	conn, err := uow.connector.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		if releaseErr := conn.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			uow.log.Error("Failed to release connection after failed begin", slog.String("error", releaseErr.Error()))
		}
		return nil, fmt.Errorf("%w: error beginning transaction: %w", custom_errors.ErrConnection, err)
	}

	return &PostgresTransaction{conn: conn, tx: tx, log: uow.log, metrics: uow.metrics}, nil
}

type PostgresTransaction struct {
	conn     database.Conn
	tx       pgx.Tx
	log      ports.Logger
	metrics  ports.MetricsProvider
	released bool
}

func (t *PostgresTransaction) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback is a no-op once the transaction has already finished.
func (t *PostgresTransaction) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (t *PostgresTransaction) Close(ctx context.Context) error {
	if t.released {
		return nil
	}
	t.released = true
	return t.conn.Release(ctx)
}

func (t *PostgresTransaction) PostRepository() post_repository.Repository {
	return post_repository_postgres.NewPostRepository(t.tx, t.log, t.metrics)
}
