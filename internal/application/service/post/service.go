package post_service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marites-post-service/internal/application/session"
	"marites-post-service/internal/custom_errors"
	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
)

// PostService runs every operation in exactly one database session.
type PostService struct {
	scope   *session.Scope
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewPostService(scope *session.Scope, log ports.Logger, metrics ports.MetricsProvider) *PostService {
	return &PostService{
		scope:   scope,
		log:     log,
		metrics: metrics,
	}
}

func (s *PostService) CreatePost(ctx context.Context, post *model.CreatePostDTO) (*model.Post, error) {
	if err := validateCreate(post); err != nil {
		s.log.Debug("Rejected create post request", slog.String("error", err.Error()))
		s.metrics.IncrementPostOperations("create", false)
		return nil, err
	}

	newPost := &model.Post{
		Title:     post.Title,
		Content:   post.Content,
		Published: post.Published,
		Author:    post.Author,
		Rating:    post.Rating,
		Likes:     post.Likes,
		Comments:  post.Comments,
	}

	created, err := session.Query(ctx, s.scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().Create(ctx, newPost)
	})
	s.metrics.IncrementPostOperations("create", err == nil)
	if err != nil {
		s.log.Error("Failed to create post", slog.String("error", err.Error()))
		return nil, err
	}

	s.log.Info("Post created", slog.Int64("post_id", created.ID))
	return created, nil
}

// ListPosts returns custom_errors.ErrNoPosts when there is nothing stored.
func (s *PostService) ListPosts(ctx context.Context) ([]*model.Post, error) {
	posts, err := session.Query(ctx, s.scope, func(tx ports.Transaction) ([]*model.Post, error) {
		return tx.PostRepository().List(ctx)
	})
	if err != nil {
		s.metrics.IncrementPostOperations("list", false)
		s.log.Error("Failed to list posts", slog.String("error", err.Error()))
		return nil, err
	}

	s.metrics.IncrementPostOperations("list", true)
	if len(posts) == 0 {
		return nil, custom_errors.ErrNoPosts
	}
	return posts, nil
}

func (s *PostService) GetLatestPost(ctx context.Context) (*model.Post, error) {
	post, err := session.Query(ctx, s.scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().GetLatest(ctx)
	})
	s.metrics.IncrementPostOperations("get_latest", err == nil || custom_errors.IsNotFound(err))
	if err != nil {
		s.logFailure("Failed to get latest post", err)
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	post, err := session.Query(ctx, s.scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().GetByID(ctx, id)
	})
	s.metrics.IncrementPostOperations("get", err == nil || custom_errors.IsNotFound(err))
	if err != nil {
		s.logFailure("Failed to get post", err, slog.Int64("post_id", id))
		return nil, err
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id int64, update *model.UpdatePostDTO) (*model.Post, error) {
	if err := validateUpdate(update); err != nil {
		s.log.Debug("Rejected update post request", slog.Int64("post_id", id), slog.String("error", err.Error()))
		s.metrics.IncrementPostOperations("update", false)
		return nil, err
	}

	updated, err := session.Query(ctx, s.scope, func(tx ports.Transaction) (*model.Post, error) {
		return tx.PostRepository().Update(ctx, id, update)
	})
	s.metrics.IncrementPostOperations("update", err == nil || custom_errors.IsNotFound(err))
	if err != nil {
		s.logFailure("Failed to update post", err, slog.Int64("post_id", id))
		return nil, err
	}

	s.log.Info("Post updated", slog.Int64("post_id", id))
	return updated, nil
}

func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	err := s.scope.Do(ctx, func(tx ports.Transaction) error {
		return tx.PostRepository().Delete(ctx, id)
	})
	s.metrics.IncrementPostOperations("delete", err == nil || custom_errors.IsNotFound(err))
	if err != nil {
		s.logFailure("Failed to delete post", err, slog.Int64("post_id", id))
		return err
	}

	s.log.Info("Post deleted", slog.Int64("post_id", id))
	return nil
}

// logFailure keeps expected misses out of the error log.
func (s *PostService) logFailure(msg string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("error", err.Error()))
	if custom_errors.IsNotFound(err) {
		s.log.Debug(msg, attrs...)
		return
	}
	s.log.Error(msg, attrs...)
}

func validateCreate(post *model.CreatePostDTO) error {
	if post == nil {
		return fmt.Errorf("%w: empty request", custom_errors.ErrPostValidation)
	}
	if err := requireText(map[string]string{"title": post.Title, "content": post.Content, "author": post.Author}); err != nil {
		return err
	}
	if post.Likes < 0 {
		return fmt.Errorf("%w: likes must not be negative", custom_errors.ErrPostValidation)
	}
	return nil
}

func validateUpdate(update *model.UpdatePostDTO) error {
	if update == nil {
		return fmt.Errorf("%w: empty request", custom_errors.ErrPostValidation)
	}
	return requireText(map[string]string{"title": update.Title, "content": update.Content})
}

func requireText(fields map[string]string) error {
	for _, name := range []string{"title", "content", "author"} {
		value, ok := fields[name]
		if ok && strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", custom_errors.ErrPostValidation, name)
		}
	}
	return nil
}
