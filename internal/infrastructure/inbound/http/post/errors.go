package post_http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"marites-post-service/internal/custom_errors"
	ports "marites-post-service/internal/domain/ports/output"
)

// ErrorDetail is one entry of a 422 response.
type ErrorDetail struct {
	Loc   []any  `json:"loc"`
	Msg   string `json:"msg"`
	Type  string `json:"type"`
	Input any    `json:"input,omitempty"`
}

func postNotFoundDetail(id int64) string {
	return fmt.Sprintf("Post with id: %d was not found", id)
}

func respondValidation(c *gin.Context, details []ErrorDetail) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
}

// respondError maps a service error to its HTTP status. notFound is the
// detail used for a 404.
func respondError(c *gin.Context, log ports.Logger, err error, notFound string) {
	switch {
	case custom_errors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"detail": notFound})
	case custom_errors.IsValidation(err):
		respondValidation(c, []ErrorDetail{{Loc: []any{"body"}, Msg: err.Error(), Type: "value_error"}})
	default:
		log.Error("Request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}
