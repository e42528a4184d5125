package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marites-post-service/internal/application/session"
	"marites-post-service/internal/custom_errors"
	ports "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/infrastructure/outbound/metrics/prometheus"
	uow_mock "marites-post-service/mocks/uow"
)

type logEntry struct {
	level string
	msg   string
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *recordingLogger) Debug(msg string, _ ...any)    { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)     { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)     { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any)    { l.record("error", msg) }
func (l *recordingLogger) Critical(msg string, _ ...any) { l.record("critical", msg) }

func (l *recordingLogger) has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

func setupScope(t *testing.T) (*session.Scope, *uow_mock.UnitOfWork, *uow_mock.Transaction, *recordingLogger) {
	uow := new(uow_mock.UnitOfWork)
	tx := new(uow_mock.Transaction)
	log := &recordingLogger{}
	uow.On("Begin", mock.Anything).Return(tx, nil).Once()
	return session.NewScope(uow, log, prometheus.NewPrometheusMetricsProvider()), uow, tx, log
}

func TestScope_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("commits and closes on success", func(t *testing.T) {
		scope, uow, tx, _ := setupScope(t)
		tx.On("Commit", mock.Anything).Return(nil).Once()
		tx.On("Close", mock.Anything).Return(nil).Once()

		err := scope.Do(ctx, func(tx ports.Transaction) error { return nil })

		require.NoError(t, err)
		tx.AssertNumberOfCalls(t, "Commit", 1)
		tx.AssertNumberOfCalls(t, "Close", 1)
		tx.AssertNotCalled(t, "Rollback", mock.Anything)
		uow.AssertExpectations(t)
	})

	t.Run("rolls back and closes exactly once on failure, never commits", func(t *testing.T) {
		scope, _, tx, _ := setupScope(t)
		tx.On("Rollback", mock.Anything).Return(nil).Once()
		tx.On("Close", mock.Anything).Return(nil).Once()
		workErr := errors.New("insert failed")

		err := scope.Do(ctx, func(tx ports.Transaction) error { return workErr })

		assert.Same(t, workErr, err)
		tx.AssertNotCalled(t, "Commit", mock.Anything)
		tx.AssertNumberOfCalls(t, "Rollback", 1)
		tx.AssertNumberOfCalls(t, "Close", 1)
	})

	t.Run("rollback failure is logged critical and original error is returned", func(t *testing.T) {
		scope, _, tx, log := setupScope(t)
		tx.On("Rollback", mock.Anything).Return(errors.New("conn reset")).Once()
		tx.On("Close", mock.Anything).Return(nil).Once()
		workErr := errors.New("update failed")

		err := scope.Do(ctx, func(tx ports.Transaction) error { return workErr })

		assert.Same(t, workErr, err)
		assert.True(t, log.has("critical", "Database rollback failed"))
		tx.AssertNumberOfCalls(t, "Close", 1)
		tx.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("commit failure is a transaction error and triggers rollback", func(t *testing.T) {
		scope, _, tx, _ := setupScope(t)
		commitErr := errors.New("serialization failure")
		tx.On("Commit", mock.Anything).Return(commitErr).Once()
		tx.On("Rollback", mock.Anything).Return(nil).Once()
		tx.On("Close", mock.Anything).Return(nil).Once()

		err := scope.Do(ctx, func(tx ports.Transaction) error { return nil })

		require.Error(t, err)
		assert.ErrorIs(t, err, custom_errors.ErrTransaction)
		assert.ErrorIs(t, err, commitErr)
		tx.AssertNumberOfCalls(t, "Rollback", 1)
		tx.AssertNumberOfCalls(t, "Close", 1)
	})

	t.Run("close failure is logged, not returned", func(t *testing.T) {
		scope, _, tx, log := setupScope(t)
		tx.On("Commit", mock.Anything).Return(nil).Once()
		tx.On("Close", mock.Anything).Return(errors.New("broken pipe")).Once()

		err := scope.Do(ctx, func(tx ports.Transaction) error { return nil })

		assert.NoError(t, err)
		assert.True(t, log.has("error", "Failed to close database connection"))
	})

	t.Run("close failure does not mask the work error", func(t *testing.T) {
		scope, _, tx, _ := setupScope(t)
		tx.On("Rollback", mock.Anything).Return(nil).Once()
		tx.On("Close", mock.Anything).Return(errors.New("broken pipe")).Once()

		err := scope.Do(ctx, func(tx ports.Transaction) error { return custom_errors.ErrPostNotFound })

		assert.ErrorIs(t, err, custom_errors.ErrPostNotFound)
	})

	t.Run("panic rolls back, closes and propagates", func(t *testing.T) {
		scope, _, tx, _ := setupScope(t)
		tx.On("Rollback", mock.Anything).Return(nil).Once()
		tx.On("Close", mock.Anything).Return(nil).Once()

		assert.PanicsWithValue(t, "boom", func() {
			_ = scope.Do(ctx, func(tx ports.Transaction) error { panic("boom") })
		})

		tx.AssertNotCalled(t, "Commit", mock.Anything)
		tx.AssertNumberOfCalls(t, "Rollback", 1)
		tx.AssertNumberOfCalls(t, "Close", 1)
	})

	t.Run("acquire failure is returned without release", func(t *testing.T) {
		uow := new(uow_mock.UnitOfWork)
		log := &recordingLogger{}
		connErr := errors.Join(custom_errors.ErrConnection, errors.New("dial tcp: connection refused"))
		uow.On("Begin", mock.Anything).Return(nil, connErr).Once()
		scope := session.NewScope(uow, log, prometheus.NewPrometheusMetricsProvider())

		called := false
		err := scope.Do(ctx, func(tx ports.Transaction) error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, custom_errors.ErrConnection)
		assert.False(t, called)
		assert.True(t, log.has("error", "Failed to open database session"))
	})
}

func TestQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the result on commit", func(t *testing.T) {
		scope, _, tx, _ := setupScope(t)
		tx.On("Commit", mock.Anything).Return(nil).Once()
		tx.On("Close", mock.Anything).Return(nil).Once()

		got, err := session.Query(ctx, scope, func(tx ports.Transaction) (int, error) { return 42, nil })

		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("returns the zero value on failure", func(t *testing.T) {
		scope, _, tx, _ := setupScope(t)
		tx.On("Rollback", mock.Anything).Return(nil).Once()
		tx.On("Close", mock.Anything).Return(nil).Once()

		got, err := session.Query(ctx, scope, func(tx ports.Transaction) (*int, error) {
			v := 1
			return &v, errors.New("scan failed")
		})

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "acquired", session.StateAcquired.String())
	assert.Equal(t, "committing", session.StateCommitting.String())
	assert.Equal(t, "rolling_back", session.StateRollingBack.String())
	assert.Equal(t, "closed", session.StateClosed.String())
}
