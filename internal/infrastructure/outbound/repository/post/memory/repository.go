package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"marites-post-service/internal/custom_errors"
	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
)

type PostRepository struct {
	log    ports.Logger
	mu     sync.RWMutex
	posts  map[int64]*model.Post
	nextID int64
	now    func() time.Time
}

func NewPostRepository(log ports.Logger) *PostRepository {
	return &PostRepository{
		log:    log,
		posts:  make(map[int64]*model.Post),
		nextID: 1,
		now:    time.Now,
	}
}

func (p *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now().UTC()

	newPost := &model.Post{
		ID:        p.nextID,
		Title:     post.Title,
		Content:   post.Content,
		Published: post.Published,
		Author:    post.Author,
		CreatedAt: now,
		UpdatedAt: now,
		Rating:    copyRating(post.Rating),
		Likes:     post.Likes,
		Comments:  copyComments(post.Comments),
	}
	p.nextID++

	p.posts[newPost.ID] = newPost
	p.log.Debug("Post created in memory", slog.Int64("id", newPost.ID))

	return clonePost(newPost), nil
}

func (p *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	post, exists := p.posts[id]
	if !exists {
		p.log.Debug("Post not found by id", slog.Int64("id", id))
		return nil, custom_errors.ErrPostNotFound
	}

	return clonePost(post), nil
}

func (p *PostRepository) GetLatest(ctx context.Context) (*model.Post, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var latest *model.Post
	for _, post := range p.posts {
		if latest == nil || newer(post, latest) {
			latest = post
		}
	}
	if latest == nil {
		return nil, custom_errors.ErrNoPosts
	}

	return clonePost(latest), nil
}

func (p *PostRepository) List(ctx context.Context) ([]*model.Post, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*model.Post, 0, len(p.posts))
	for _, post := range p.posts {
		result = append(result, clonePost(post))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (p *PostRepository) Update(ctx context.Context, id int64, update *model.UpdatePostDTO) (*model.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	post, exists := p.posts[id]
	if !exists {
		return nil, custom_errors.ErrPostNotFound
	}

	post.Title = update.Title
	post.Content = update.Content
	post.Published = update.Published

	if now := p.now().UTC(); now.After(post.UpdatedAt) {
		post.UpdatedAt = now
	}

	return clonePost(post), nil
}

func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.posts[id]; !exists {
		return custom_errors.ErrPostNotFound
	}

	delete(p.posts, id)
	return nil
}

func newer(a, b *model.Post) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func clonePost(post *model.Post) *model.Post {
	result := *post
	result.Rating = copyRating(post.Rating)
	result.Comments = copyComments(post.Comments)
	return &result
}

func copyRating(rating *float64) *float64 {
	if rating == nil {
		return nil
	}
	r := *rating
	return &r
}

func copyComments(comments []string) []string {
	if comments == nil {
		return nil
	}
	return append([]string(nil), comments...)
}
