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

type PostCreator interface {
	CreatePost(ctx context.Context, post *model.CreatePostDTO) (*model.Post, error)
}

type CreatePostHandler struct {
	postService PostCreator
	validate    *validator.Validate
	log         ports.Logger
}

func NewCreatePostHandler(postService PostCreator, validate *validator.Validate, log ports.Logger) *CreatePostHandler {
	return &CreatePostHandler{
		postService: postService,
		validate:    validate,
		log:         log,
	}
}

func (h *CreatePostHandler) Handle(c *gin.Context) {
	req, details := bindPost(c, h.validate)
	if details != nil {
		h.log.Debug("CreatePost validation failed", slog.Int("errors", len(details)))
		respondValidation(c, details)
		return
	}

	created, err := h.postService.CreatePost(c.Request.Context(), req.ToCreateDTO())
	if err != nil {
		respondError(c, h.log, err, "Post was not found")
		return
	}

	c.JSON(http.StatusCreated, created)
}
