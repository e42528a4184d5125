package post_http

import (
	"github.com/gin-gonic/gin"

	post_service "marites-post-service/internal/domain/ports/input/post"
	ports "marites-post-service/internal/domain/ports/output"
)

type PostHTTPService struct {
	createPostHandler    *CreatePostHandler
	listPostsHandler     *ListPostsHandler
	getLatestPostHandler *GetLatestPostHandler
	getPostHandler       *GetPostHandler
	updatePostHandler    *UpdatePostHandler
	deletePostHandler    *DeletePostHandler
}

func NewPostHTTPService(postService post_service.Service, log ports.Logger) *PostHTTPService {
	validate := NewValidator()
	return &PostHTTPService{
		createPostHandler:    NewCreatePostHandler(postService, validate, log),
		listPostsHandler:     NewListPostsHandler(postService, log),
		getLatestPostHandler: NewGetLatestPostHandler(postService, log),
		getPostHandler:       NewGetPostHandler(postService, log),
		updatePostHandler:    NewUpdatePostHandler(postService, validate, log),
		deletePostHandler:    NewDeletePostHandler(postService, log),
	}
}

// Register mounts the post routes. /posts/latest is a static segment, so gin
// matches it before /posts/:id.
func (s *PostHTTPService) Register(r gin.IRouter) {
	r.POST("/createposts", s.createPostHandler.Handle)
	r.GET("/posts", s.listPostsHandler.Handle)
	r.GET("/posts/latest", s.getLatestPostHandler.Handle)
	r.GET("/posts/:id", s.getPostHandler.Handle)
	r.PUT("/posts/:id", s.updatePostHandler.Handle)
	r.DELETE("/posts/:id", s.deletePostHandler.Handle)
}
