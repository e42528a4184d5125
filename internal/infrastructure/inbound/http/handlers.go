package http_server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ports "marites-post-service/internal/domain/ports/output"
)

// HealthChecker reports whether the storage backend is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Check(ctx context.Context) error {
	return f(ctx)
}

func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "welcome to my api"})
}

func healthHandler(checker HealthChecker, log ports.Logger, metrics ports.MetricsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := checker.Check(ctx); err != nil {
			log.Warn("Health check failed", slog.String("error", err.Error()))
			metrics.SetServiceHealth(false)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "detail": err.Error()})
			return
		}

		metrics.SetServiceHealth(true)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
