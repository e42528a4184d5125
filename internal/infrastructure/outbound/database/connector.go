package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Conn is one database connection owned by a single session. Release hands
// it back to where it came from: the pool, or the server when it was dialed
// directly.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Release(ctx context.Context) error
}

type Connector interface {
	Acquire(ctx context.Context) (Conn, error)
}
