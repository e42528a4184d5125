package gorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"marites-post-service/internal/custom_errors"
	ports "marites-post-service/internal/domain/ports/output"
	post_repository "marites-post-service/internal/domain/ports/output/post"
	post_repository_gorm "marites-post-service/internal/infrastructure/outbound/repository/post/gorm"
)

// GormUnitOfWork opens one ORM transaction per session. database/sql pins the
// transaction to a single pooled connection and hands it back on commit or
// rollback.
type GormUnitOfWork struct {
	db      *gorm.DB
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewGormUOW(db *gorm.DB, log ports.Logger, metrics ports.MetricsProvider) ports.UnitOfWork {
	return &GormUnitOfWork{db: db, log: log, metrics: metrics}
}

func (uow *GormUnitOfWork) Begin(ctx context.Context) (ports.Transaction, error) {
	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%w: %w", custom_errors.ErrConnection, tx.Error)
	}
	return &GormTransaction{tx: tx, log: uow.log, metrics: uow.metrics}, nil
}

type GormTransaction struct {
	tx       *gorm.DB
	log      ports.Logger
	metrics  ports.MetricsProvider
	finished bool
	closed   bool
}

func (t *GormTransaction) PostRepository() post_repository.Repository {
	return post_repository_gorm.NewPostRepository(t.tx, t.log, t.metrics)
}

func (t *GormTransaction) Commit(ctx context.Context) error {
	t.finished = true
	return t.tx.Commit().Error
}

func (t *GormTransaction) Rollback(ctx context.Context) error {
	t.finished = true
	err := t.tx.Rollback().Error
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// Close returns the connection to the pool. A transaction that was never
// finished is rolled back first.
func (t *GormTransaction) Close(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.finished {
		return nil
	}
	return t.Rollback(ctx)
}
