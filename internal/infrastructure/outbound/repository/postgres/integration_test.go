//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"marites-post-service/internal/application/session"
	"marites-post-service/internal/custom_errors"
	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/infrastructure/config"
	"marites-post-service/internal/infrastructure/logger"
	"marites-post-service/internal/infrastructure/outbound/database"
	"marites-post-service/internal/infrastructure/outbound/metrics/prometheus"
	gormuow "marites-post-service/internal/infrastructure/outbound/repository/gorm"
	"marites-post-service/internal/infrastructure/outbound/repository/postgres"
)

func startDatabase(ctx context.Context, t *testing.T) config.Database {
	t.Helper()
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("posts"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pgContainer.Terminate(terminateCtx); err != nil {
			t.Logf("Warning: failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := logger.New("test")
	require.NoError(t, postgres.RunMigrations(connStr, log))
	// Applying twice is a no-op.
	require.NoError(t, postgres.RunMigrations(connStr, log))

	return config.Database{URL: connStr}
}

func exerciseCRUD(t *testing.T, scope *session.Scope) {
	ctx := context.Background()
	rating := 4.0

	created, err := session.Query(ctx, scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().Create(ctx, &model.Post{
			Title: "A", Content: "B", Author: "C", Published: true,
			Rating: &rating, Comments: []string{"nice"},
		})
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	second, err := session.Query(ctx, scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().Create(ctx, &model.Post{Title: "D", Content: "E", Author: "F"})
	})
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, second.ID)

	got, err := session.Query(ctx, scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().GetByID(ctx, created.ID)
	})
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, []string{"nice"}, got.Comments)
	assert.Equal(t, 4.0, *got.Rating)

	latest, err := session.Query(ctx, scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().GetLatest(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	updated, err := session.Query(ctx, scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().Update(ctx, created.ID, &model.UpdatePostDTO{Title: "A2", Content: "B2", Published: false})
	})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Title)
	assert.False(t, updated.Published)
	assert.Equal(t, "C", updated.Author)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt.Truncate(time.Microsecond)))
	assert.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Millisecond)

	_, err = session.Query(ctx, scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().Update(ctx, 999999, &model.UpdatePostDTO{Title: "x", Content: "y"})
	})
	assert.ErrorIs(t, err, custom_errors.ErrPostNotFound)

	// A failed session must not leave its writes behind.
	errAbort := errors.New("abort")
	var abandonedID int64
	err = scope.Do(ctx, func(tx ports.Transaction) error {
		p, err := tx.PostRepository().Create(ctx, &model.Post{Title: "gone", Content: "gone", Author: "gone"})
		if err != nil {
			return err
		}
		abandonedID = p.ID
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)
	_, err = session.Query(ctx, scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().GetByID(ctx, abandonedID)
	})
	assert.ErrorIs(t, err, custom_errors.ErrPostNotFound)

	list, err := session.Query(ctx, scope, func(tx ports.Transaction) ([]*model.Post, error) {
		return tx.PostRepository().List(ctx)
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, created.ID, list[0].ID)

	for _, id := range []int64{created.ID, second.ID} {
		require.NoError(t, scope.Do(ctx, func(tx ports.Transaction) error {
			return tx.PostRepository().Delete(ctx, id)
		}))
	}
	err = scope.Do(ctx, func(tx ports.Transaction) error {
		return tx.PostRepository().Delete(ctx, created.ID)
	})
	assert.ErrorIs(t, err, custom_errors.ErrPostNotFound)

	_, err = session.Query(ctx, scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().GetLatest(ctx)
	})
	assert.ErrorIs(t, err, custom_errors.ErrNoPosts)
}

func TestIntegration_Backends(t *testing.T) {
	ctx := context.Background()
	dbCfg := startDatabase(ctx, t)
	log := logger.New("test")
	metrics := prometheus.NewPrometheusMetricsProvider()
	opts := database.PoolOptions{Size: 2, MaxOverflow: 2, Timeout: 5 * time.Second, Recycle: time.Minute, PrePing: true}

	t.Run("pooled raw SQL", func(t *testing.T) {
		pool, err := database.NewPool(ctx, dbCfg, opts, log)
		require.NoError(t, err)
		defer pool.Close()

		uow := postgres.NewPostgresUOW(database.NewPoolConnector(pool, opts.Timeout, metrics), log, metrics)
		exerciseCRUD(t, session.NewScope(uow, log, metrics))
		assert.Equal(t, int32(0), pool.Stat().AcquiredConns())
	})

	t.Run("connection per session", func(t *testing.T) {
		uow := postgres.NewPostgresUOW(database.NewConnectionFactory(dbCfg, log), log, metrics)
		exerciseCRUD(t, session.NewScope(uow, log, metrics))
	})

	t.Run("gorm", func(t *testing.T) {
		db, err := database.OpenGorm(dbCfg, opts, log)
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		defer sqlDB.Close()

		uow := gormuow.NewGormUOW(db, log, metrics)
		exerciseCRUD(t, session.NewScope(uow, log, metrics))
		assert.Equal(t, 0, sqlDB.Stats().InUse)
	})
}
