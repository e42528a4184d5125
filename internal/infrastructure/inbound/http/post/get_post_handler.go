package post_http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
)

type PostGetter interface {
	GetPostByID(ctx context.Context, id int64) (*model.Post, error)
}

type GetPostHandler struct {
	postService PostGetter
	log         ports.Logger
}

func NewGetPostHandler(postService PostGetter, log ports.Logger) *GetPostHandler {
	return &GetPostHandler{postService: postService, log: log}
}

func (h *GetPostHandler) Handle(c *gin.Context) {
	id, details := parseID(c)
	if details != nil {
		respondValidation(c, details)
		return
	}

	h.log.Debug("Getting post by ID", slog.Int64("post_id", id))
	post, err := h.postService.GetPostByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, postNotFoundDetail(id))
		return
	}

	c.JSON(http.StatusOK, post)
}
