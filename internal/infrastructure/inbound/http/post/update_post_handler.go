package post_http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	model "marites-post-service/internal/domain/models"
	ports "marites-post-service/internal/domain/ports/output"
)

type PostUpdater interface {
	UpdatePost(ctx context.Context, id int64, update *model.UpdatePostDTO) (*model.Post, error)
}

type UpdatePostHandler struct {
	postService PostUpdater
	validate    *validator.Validate
	log         ports.Logger
}

func NewUpdatePostHandler(postService PostUpdater, validate *validator.Validate, log ports.Logger) *UpdatePostHandler {
	return &UpdatePostHandler{
		postService: postService,
		validate:    validate,
		log:         log,
	}
}

// Handle accepts a full post body. Only title, content and published are
// stored; the other fields are validated and then ignored.
func (h *UpdatePostHandler) Handle(c *gin.Context) {
	id, details := parseID(c)
	if details != nil {
		respondValidation(c, details)
		return
	}

	req, details := bindPost(c, h.validate)
	if details != nil {
		h.log.Debug("UpdatePost validation failed", slog.Int64("post_id", id), slog.Int("errors", len(details)))
		respondValidation(c, details)
		return
	}

	updated, err := h.postService.UpdatePost(c.Request.Context(), id, req.ToUpdateDTO())
	if err != nil {
		respondError(c, h.log, err, postNotFoundDetail(id))
		return
	}

	c.JSON(http.StatusOK, updated)
}
