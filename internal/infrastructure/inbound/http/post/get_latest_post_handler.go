package post_http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
)

type LatestPostGetter interface {
	GetLatestPost(ctx context.Context) (*model.Post, error)
}

type GetLatestPostHandler struct {
	postService LatestPostGetter
	log         ports.Logger
}

func NewGetLatestPostHandler(postService LatestPostGetter, log ports.Logger) *GetLatestPostHandler {
	return &GetLatestPostHandler{postService: postService, log: log}
}

func (h *GetLatestPostHandler) Handle(c *gin.Context) {
	post, err := h.postService.GetLatestPost(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "No posts were found")
		return
	}

	c.JSON(http.StatusOK, post)
}
