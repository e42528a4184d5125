package post_http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
)

type PostLister interface {
	ListPosts(ctx context.Context) ([]*model.Post, error)
}

type ListPostsHandler struct {
	postService PostLister
	log         ports.Logger
}

func NewListPostsHandler(postService PostLister, log ports.Logger) *ListPostsHandler {
	return &ListPostsHandler{postService: postService, log: log}
}

func (h *ListPostsHandler) Handle(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "No posts were found")
		return
	}

	c.JSON(http.StatusOK, posts)
}
