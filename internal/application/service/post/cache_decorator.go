package post_service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marites-post-service/internal/custom_errors"
	model "marites-post-service/internal/domain/models"
	post_service "marites-post-service/internal/domain/ports/input/post"
	output "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/domain/ports/output/cache"
)

// PostServiceCacheDecorator keeps single posts in the cache. Cache failures
// are logged and never fail the request.
type PostServiceCacheDecorator struct {
	service   post_service.Service
	postCache cache.PostCache
	log       output.Logger
	metrics   output.MetricsProvider
}

func NewPostServiceCacheDecorator(
	service post_service.Service,
	postCache cache.PostCache,
	log output.Logger,
	metrics output.MetricsProvider,
) post_service.Service {
	return &PostServiceCacheDecorator{
		service:   service,
		postCache: postCache,
		log:       log,
		metrics:   metrics,
	}
}

func (d *PostServiceCacheDecorator) CreatePost(ctx context.Context, post *model.CreatePostDTO) (*model.Post, error) {
	result, err := d.service.CreatePost(ctx, post)
	if err != nil {
		return nil, err
	}

	d.storePost(ctx, result)
	return result, nil
}

func (d *PostServiceCacheDecorator) ListPosts(ctx context.Context) ([]*model.Post, error) {
	return d.service.ListPosts(ctx)
}

func (d *PostServiceCacheDecorator) GetLatestPost(ctx context.Context) (*model.Post, error) {
	return d.service.GetLatestPost(ctx)
}

func (d *PostServiceCacheDecorator) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	cacheStart := time.Now()
	cachedPost, err := d.postCache.GetPost(ctx, id)
	d.metrics.RecordCacheOperationDuration("post_get", time.Since(cacheStart))
	if err == nil {
		d.log.Debug("Post found in cache", slog.Int64("post_id", id))
		d.metrics.IncrementCacheHits()
		return cachedPost, nil
	}

	if errors.Is(err, custom_errors.ErrCacheMiss) {
		d.metrics.IncrementCacheMisses()
	} else {
		d.log.Warn("Failed to get post from cache",
			slog.Int64("post_id", id),
			slog.String("error", err.Error()))
	}

	post, err := d.service.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d.storePost(ctx, post)
	return post, nil
}

func (d *PostServiceCacheDecorator) UpdatePost(ctx context.Context, id int64, update *model.UpdatePostDTO) (*model.Post, error) {
	result, err := d.service.UpdatePost(ctx, id, update)
	if err != nil {
		if custom_errors.IsNotFound(err) {
			d.evictPost(ctx, id)
		}
		return nil, err
	}

	d.storePost(ctx, result)
	return result, nil
}

func (d *PostServiceCacheDecorator) DeletePost(ctx context.Context, id int64) error {
	if err := d.service.DeletePost(ctx, id); err != nil {
		if custom_errors.IsNotFound(err) {
			d.evictPost(ctx, id)
		}
		return err
	}

	d.evictPost(ctx, id)
	return nil
}

func (d *PostServiceCacheDecorator) storePost(ctx context.Context, post *model.Post) {
	start := time.Now()
	if err := d.postCache.SetPost(ctx, post); err != nil {
		d.log.Warn("Failed to cache post",
			slog.Int64("post_id", post.ID),
			slog.String("error", err.Error()))
	}
	d.metrics.RecordCacheOperationDuration("post_set", time.Since(start))
}

func (d *PostServiceCacheDecorator) evictPost(ctx context.Context, id int64) {
	start := time.Now()
	if err := d.postCache.DeletePost(ctx, id); err != nil {
		d.log.Warn("Failed to invalidate post cache",
			slog.Int64("post_id", id),
			slog.String("error", err.Error()))
	}
	d.metrics.RecordCacheOperationDuration("post_delete", time.Since(start))
}
