package post_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marites-post-service/internal/application/session"
	"marites-post-service/internal/custom_errors"
	model "marites-post-service/internal/domain/models"
	"marites-post-service/internal/infrastructure/logger"
	"marites-post-service/internal/infrastructure/outbound/metrics/prometheus"
	post_repository_mock "marites-post-service/mocks/post"
	uow_mock "marites-post-service/mocks/uow"
)

type serviceMocks struct {
	uow      *uow_mock.UnitOfWork
	tx       *uow_mock.Transaction
	postRepo *post_repository_mock.Repository
}

func setupService(t *testing.T) (*PostService, serviceMocks) {
	t.Helper()
	m := serviceMocks{
		uow:      uow_mock.NewUnitOfWork(t),
		tx:       uow_mock.NewTransaction(t),
		postRepo: post_repository_mock.NewRepository(t),
	}
	log := logger.New("test")
	metrics := prometheus.NewPrometheusMetricsProvider()
	return NewPostService(session.NewScope(m.uow, log, metrics), log, metrics), m
}

// expectCommit wires a session that ends with a successful commit.
func (m serviceMocks) expectCommit() {
	m.uow.On("Begin", mock.Anything).Return(m.tx, nil).Once()
	m.tx.On("PostRepository").Return(m.postRepo)
	m.tx.On("Commit", mock.Anything).Return(nil).Once()
	m.tx.On("Close", mock.Anything).Return(nil).Once()
}

// expectRollback wires a session that fails and is rolled back.
func (m serviceMocks) expectRollback() {
	m.uow.On("Begin", mock.Anything).Return(m.tx, nil).Once()
	m.tx.On("PostRepository").Return(m.postRepo)
	m.tx.On("Rollback", mock.Anything).Return(nil).Once()
	m.tx.On("Close", mock.Anything).Return(nil).Once()
}

func TestPostService_CreatePost(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name        string
		input       *model.CreatePostDTO
		mocks       func(m serviceMocks)
		want        *model.Post
		wantErrType error
	}{
		{
			name:  "Success",
			input: &model.CreatePostDTO{Title: "A", Content: "B", Author: "C", Published: true},
			mocks: func(m serviceMocks) {
				m.expectCommit()
				m.postRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Post) bool {
					return p.Title == "A" && p.Content == "B" && p.Author == "C" && p.Published && p.ID == 0
				})).Return(&model.Post{ID: 1, Title: "A", Content: "B", Author: "C", Published: true, CreatedAt: now, UpdatedAt: now}, nil)
			},
			want: &model.Post{ID: 1, Title: "A", Content: "B", Author: "C", Published: true, CreatedAt: now, UpdatedAt: now},
		},
		{
			name:        "Empty title",
			input:       &model.CreatePostDTO{Title: "  ", Content: "B", Author: "C"},
			mocks:       func(m serviceMocks) {},
			wantErrType: custom_errors.ErrPostValidation,
		},
		{
			name:        "Missing author",
			input:       &model.CreatePostDTO{Title: "A", Content: "B"},
			mocks:       func(m serviceMocks) {},
			wantErrType: custom_errors.ErrPostValidation,
		},
		{
			name:        "Negative likes",
			input:       &model.CreatePostDTO{Title: "A", Content: "B", Author: "C", Likes: -1},
			mocks:       func(m serviceMocks) {},
			wantErrType: custom_errors.ErrPostValidation,
		},
		{
			name:  "Database error",
			input: &model.CreatePostDTO{Title: "A", Content: "B", Author: "C"},
			mocks: func(m serviceMocks) {
				m.expectRollback()
				m.postRepo.On("Create", mock.Anything, mock.Anything).Return(nil, custom_errors.ErrDatabaseQuery)
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
		{
			name:  "Connection error",
			input: &model.CreatePostDTO{Title: "A", Content: "B", Author: "C"},
			mocks: func(m serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(nil, errors.Join(custom_errors.ErrConnection, errors.New("refused")))
			},
			wantErrType: custom_errors.ErrConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := setupService(t)
			tt.mocks(m)

			got, err := service.CreatePost(context.Background(), tt.input)

			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostService_ListPosts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service, m := setupService(t)
		m.expectCommit()
		m.postRepo.On("List", mock.Anything).Return([]*model.Post{{ID: 1}, {ID: 2}}, nil)

		got, err := service.ListPosts(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Empty list is not found", func(t *testing.T) {
		service, m := setupService(t)
		m.expectCommit()
		m.postRepo.On("List", mock.Anything).Return([]*model.Post{}, nil)

		got, err := service.ListPosts(context.Background())
		assert.Nil(t, got)
		assert.ErrorIs(t, err, custom_errors.ErrNoPosts)
		assert.True(t, custom_errors.IsNotFound(err))
	})

	t.Run("Database error", func(t *testing.T) {
		service, m := setupService(t)
		m.expectRollback()
		m.postRepo.On("List", mock.Anything).Return(nil, custom_errors.ErrDatabaseQuery)

		_, err := service.ListPosts(context.Background())
		assert.ErrorIs(t, err, custom_errors.ErrDatabaseQuery)
	})
}

func TestPostService_GetLatestPost(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service, m := setupService(t)
		m.expectCommit()
		m.postRepo.On("GetLatest", mock.Anything).Return(&model.Post{ID: 9}, nil)

		got, err := service.GetLatestPost(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(9), got.ID)
	})

	t.Run("No posts", func(t *testing.T) {
		service, m := setupService(t)
		m.expectRollback()
		m.postRepo.On("GetLatest", mock.Anything).Return(nil, custom_errors.ErrNoPosts)

		_, err := service.GetLatestPost(context.Background())
		assert.ErrorIs(t, err, custom_errors.ErrNoPosts)
	})
}

func TestPostService_GetPostByID(t *testing.T) {
	tests := []struct {
		name        string
		id          int64
		mocks       func(m serviceMocks)
		wantErrType error
	}{
		{
			name: "Success",
			id:   1,
			mocks: func(m serviceMocks) {
				m.expectCommit()
				m.postRepo.On("GetByID", mock.Anything, int64(1)).Return(&model.Post{ID: 1, Title: "t"}, nil)
			},
		},
		{
			name: "Not found",
			id:   999,
			mocks: func(m serviceMocks) {
				m.expectRollback()
				m.postRepo.On("GetByID", mock.Anything, int64(999)).Return(nil, custom_errors.ErrPostNotFound)
			},
			wantErrType: custom_errors.ErrPostNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := setupService(t)
			tt.mocks(m)

			got, err := service.GetPostByID(context.Background(), tt.id)
			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
		})
	}
}

func TestPostService_UpdatePost(t *testing.T) {
	update := &model.UpdatePostDTO{Title: "new", Content: "body", Published: false}

	t.Run("Success", func(t *testing.T) {
		service, m := setupService(t)
		m.expectCommit()
		m.postRepo.On("Update", mock.Anything, int64(3), update).Return(&model.Post{ID: 3, Title: "new", Content: "body"}, nil)

		got, err := service.UpdatePost(context.Background(), 3, update)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Title)
	})

	t.Run("Not found never commits", func(t *testing.T) {
		service, m := setupService(t)
		m.expectRollback()
		m.postRepo.On("Update", mock.Anything, int64(404), update).Return(nil, custom_errors.ErrPostNotFound)

		_, err := service.UpdatePost(context.Background(), 404, update)
		assert.ErrorIs(t, err, custom_errors.ErrPostNotFound)
		m.tx.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("Validation error skips storage", func(t *testing.T) {
		service, _ := setupService(t)

		_, err := service.UpdatePost(context.Background(), 3, &model.UpdatePostDTO{Title: "", Content: "x"})
		assert.ErrorIs(t, err, custom_errors.ErrPostValidation)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service, m := setupService(t)
		m.expectCommit()
		m.postRepo.On("Delete", mock.Anything, int64(1)).Return(nil)

		assert.NoError(t, service.DeletePost(context.Background(), 1))
	})

	t.Run("Not found", func(t *testing.T) {
		service, m := setupService(t)
		m.expectRollback()
		m.postRepo.On("Delete", mock.Anything, int64(1)).Return(custom_errors.ErrPostNotFound)

		assert.ErrorIs(t, service.DeletePost(context.Background(), 1), custom_errors.ErrPostNotFound)
	})

	t.Run("Commit failure is a transaction error", func(t *testing.T) {
		service, m := setupService(t)
		m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
		m.tx.On("PostRepository").Return(m.postRepo)
		m.postRepo.On("Delete", mock.Anything, int64(1)).Return(nil)
		m.tx.On("Commit", mock.Anything).Return(errors.New("could not serialize access"))
		m.tx.On("Rollback", mock.Anything).Return(nil)
		m.tx.On("Close", mock.Anything).Return(nil).Once()

		err := service.DeletePost(context.Background(), 1)
		assert.ErrorIs(t, err, custom_errors.ErrTransaction)
	})
}
