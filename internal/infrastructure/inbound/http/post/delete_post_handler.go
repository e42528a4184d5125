package post_http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	ports "marites-post-service/internal/domain/ports/output"
)

type PostDeleter interface {
	DeletePost(ctx context.Context, id int64) error
}

type DeletePostHandler struct {
	postService PostDeleter
	log         ports.Logger
}

func NewDeletePostHandler(postService PostDeleter, log ports.Logger) *DeletePostHandler {
	return &DeletePostHandler{postService: postService, log: log}
}

func (h *DeletePostHandler) Handle(c *gin.Context) {
	id, details := parseID(c)
	if details != nil {
		respondValidation(c, details)
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err, postNotFoundDetail(id))
		return
	}

	c.Status(http.StatusNoContent)
}
