package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"marites-post-service/internal/custom_errors"
	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
)

const (
	postCacheKeyPrefix  = "post:"
	defaultPostCacheTTL = 30 * time.Minute
)

type PostCache struct {
	client *Client
	log    ports.Logger
	ttl    time.Duration
}

func NewPostCache(client *Client, log ports.Logger, ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = defaultPostCacheTTL
	}
	return &PostCache{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

func (p *PostCache) GetPost(ctx context.Context, postID int64) (*model.Post, error) {
	key := postKey(postID)

	var post model.Post
	err := p.client.GetJSON(ctx, key, &post)
	switch {
	case errors.Is(err, custom_errors.ErrCacheMiss):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("cached post %d: %w", postID, err)
	}
	return &post, nil
}

func (p *PostCache) SetPost(ctx context.Context, post *model.Post) error {
	if post == nil {
		return errors.New("nil post")
	}
	if err := p.client.SetJSON(ctx, postKey(post.ID), post, p.ttl); err != nil {
		return fmt.Errorf("cache post %d: %w", post.ID, err)
	}
	p.log.Debug("Post cached", slog.Int64("post_id", post.ID), slog.Duration("ttl", p.ttl))
	return nil
}

func (p *PostCache) DeletePost(ctx context.Context, postID int64) error {
	removed, err := p.client.Delete(ctx, postKey(postID))
	if err != nil {
		return fmt.Errorf("evict post %d: %w", postID, err)
	}
	p.log.Debug("Post evicted from cache", slog.Int64("post_id", postID), slog.Bool("existed", removed > 0))
	return nil
}

func postKey(postID int64) string {
	return postCacheKeyPrefix + strconv.FormatInt(postID, 10)
}
