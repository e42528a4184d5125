package post_service

import (
	"context"

	model "marites-post-service/internal/domain/models"
)

//go:generate mockery --name Service --dir . --output ../../../../../mocks/post --outpkg mocks --filename Service.go
type Service interface {
	CreatePost(ctx context.Context, post *model.CreatePostDTO) (*model.Post, error)
	ListPosts(ctx context.Context) ([]*model.Post, error)
	GetLatestPost(ctx context.Context) (*model.Post, error)
	GetPostByID(ctx context.Context, id int64) (*model.Post, error)
	UpdatePost(ctx context.Context, id int64, update *model.UpdatePostDTO) (*model.Post, error)
	DeletePost(ctx context.Context, id int64) error
}
