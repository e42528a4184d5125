package http_server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	post_service "marites-post-service/internal/domain/ports/input/post"
	ports "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/infrastructure/config"
	post_http "marites-post-service/internal/infrastructure/inbound/http/post"
)

type Server struct {
	server *http.Server
	log    ports.Logger
}

// NewRouter builds the gin engine with every route and middleware mounted.
func NewRouter(postService post_service.Service, health HealthChecker, log ports.Logger, metrics ports.MetricsProvider) *gin.Engine {
	r := gin.New()
	r.Use(
		Recovery(log),
		RequestID(),
		RequestLogger(log),
		Metrics(metrics),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Accept", "Content-Type", requestIDHeader},
			ExposeHeaders: []string{"Content-Length", requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	r.GET("/", rootHandler)
	r.GET("/health", healthHandler(health, log, metrics))
	post_http.NewPostHTTPService(postService, log).Register(r)

	return r
}

func NewServer(cfg config.HTTPServer, handler http.Handler, log ports.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Run() error {
	s.log.Info("Starting HTTP server", slog.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
