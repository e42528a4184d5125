package session

import (
	"context"
	"fmt"
	"log/slog"

	"marites-post-service/internal/custom_errors"
	ports "marites-post-service/internal/domain/ports/output"
)

type State int

const (
	StateAcquired State = iota
	StateCommitting
	StateRollingBack
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAcquired:
		return "acquired"
	case StateCommitting:
		return "committing"
	case StateRollingBack:
		return "rolling_back"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	outcomeCommitted      = "committed"
	outcomeRolledBack     = "rolled_back"
	outcomeRollbackFailed = "rollback_failed"
	outcomeAcquireFailed  = "acquire_failed"
	outcomeCloseFailed    = "close_failed"
)

// Scope runs a unit of work on a connection of its own. The connection is
// committed when the work succeeds, rolled back when it fails or panics, and
// released exactly once on every path.
type Scope struct {
	uow     ports.UnitOfWork
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewScope(uow ports.UnitOfWork, log ports.Logger, metrics ports.MetricsProvider) *Scope {
	return &Scope{
		uow:     uow,
		log:     log,
		metrics: metrics,
	}
}

// Do runs fn inside a transaction. The error returned by fn is returned
// unchanged; rollback and release failures are only logged. A commit failure
// is returned wrapped in custom_errors.ErrTransaction.
func (s *Scope) Do(ctx context.Context, fn func(tx ports.Transaction) error) (err error) {
	tx, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to open database session", slog.String("error", err.Error()))
		s.metrics.IncrementSessionOutcomes(outcomeAcquireFailed)
		return err
	}

	state := StateAcquired
	s.log.Debug("Database session opened", slog.String("state", state.String()))

	defer func() {
		if r := recover(); r != nil {
			if state != StateRollingBack {
				state = StateRollingBack
				s.rollback(ctx, tx, fmt.Errorf("panic in database session: %v", r))
			}
			s.release(ctx, tx, state)
			panic(r)
		}
		s.release(ctx, tx, state)
	}()

	if err = fn(tx); err != nil {
		state = StateRollingBack
		s.rollback(ctx, tx, err)
		return err
	}

	state = StateCommitting
	if commitErr := tx.Commit(ctx); commitErr != nil {
		err = fmt.Errorf("%w: %w", custom_errors.ErrTransaction, commitErr)
		s.log.Error("Failed to commit transaction", slog.String("error", commitErr.Error()))
		state = StateRollingBack
		s.rollback(ctx, tx, err)
		return err
	}

	s.metrics.IncrementSessionOutcomes(outcomeCommitted)
	return nil
}

func (s *Scope) rollback(ctx context.Context, tx ports.Transaction, cause error) {
	if custom_errors.IsNotFound(cause) || custom_errors.IsValidation(cause) {
		s.log.Debug("Rolling back database session", slog.String("error", cause.Error()))
	} else {
		s.log.Warn("Exception during database transaction, attempting rollback", slog.String("error", cause.Error()))
	}

	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		s.log.Critical("Database rollback failed",
			slog.String("original_error", cause.Error()),
			slog.String("rollback_error", err.Error()))
		s.metrics.IncrementSessionOutcomes(outcomeRollbackFailed)
		return
	}
	s.metrics.IncrementSessionOutcomes(outcomeRolledBack)
}

func (s *Scope) release(ctx context.Context, tx ports.Transaction, from State) {
	if err := tx.Close(context.WithoutCancel(ctx)); err != nil {
		s.log.Error("Failed to close database connection",
			slog.String("state", from.String()),
			slog.String("error", err.Error()))
		s.metrics.IncrementSessionOutcomes(outcomeCloseFailed)
		return
	}
	s.log.Debug("Database connection closed",
		slog.String("from_state", from.String()),
		slog.String("state", StateClosed.String()))
}

// Query runs fn through s.Do and hands back its result.
func Query[T any](ctx context.Context, s *Scope, fn func(tx ports.Transaction) (T, error)) (T, error) {
	var result T
	err := s.Do(ctx, func(tx ports.Transaction) error {
		var err error
		result, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
