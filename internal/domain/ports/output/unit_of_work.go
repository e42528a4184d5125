package ports

import (
	"context"

	post_repository "marites-post-service/internal/domain/ports/output/post"
)

// UnitOfWork opens a transaction on a connection of its own. Each call to
// Begin acquires a fresh connection; connections are never shared between
// transactions.
//
//go:generate mockery --name UnitOfWork --dir . --output ../../../../mocks/uow --outpkg mocks --filename UnitOfWork.go
type UnitOfWork interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction is a single open transaction together with the connection it
// runs on. Close releases the connection and must be called exactly once,
// after Commit or Rollback.
//
//go:generate mockery --name Transaction --dir . --output ../../../../mocks/uow --outpkg mocks --filename Transaction.go
type Transaction interface {
	PostRepository() post_repository.Repository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close(ctx context.Context) error
}
