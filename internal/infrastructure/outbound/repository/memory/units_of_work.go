package memory

import (
	"context"

	ports "marites-post-service/internal/domain/ports/output"
	post_repository "marites-post-service/internal/domain/ports/output/post"
)

// UnitOfWork hands out transactions over a shared in-memory repository.
// Every repository call is atomic on its own, so commit and rollback have
// nothing to do.
type UnitOfWork struct {
	repo post_repository.Repository
}

func NewMemoryUOW(repo post_repository.Repository) ports.UnitOfWork {
	return &UnitOfWork{repo: repo}
}

func (uow *UnitOfWork) Begin(ctx context.Context) (ports.Transaction, error) {
	return &Transaction{repo: uow.repo}, nil
}

type Transaction struct {
	repo post_repository.Repository
}

func (t *Transaction) PostRepository() post_repository.Repository {
	return t.repo
}

func (t *Transaction) Commit(ctx context.Context) error {
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	return nil
}

func (t *Transaction) Close(ctx context.Context) error {
	return nil
}
