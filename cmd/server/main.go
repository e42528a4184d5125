package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	post_service "marites-post-service/internal/application/service/post"
	"marites-post-service/internal/application/session"
	post_service_port "marites-post-service/internal/domain/ports/input/post"
	ports "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/infrastructure/config"
	grpc_server "marites-post-service/internal/infrastructure/inbound/grpc"
	http_server "marites-post-service/internal/infrastructure/inbound/http"
	metrics_server "marites-post-service/internal/infrastructure/inbound/metrics"
	"marites-post-service/internal/infrastructure/logger"
	redis_cache "marites-post-service/internal/infrastructure/outbound/cache/redis"
	prometheus_metrics "marites-post-service/internal/infrastructure/outbound/metrics/prometheus"
)

type storageOpener func(ctx context.Context, cfg *config.Config, log *logger.Logger, metrics ports.MetricsProvider) (*storage, error)

func main() {
	cfg := config.MustLoad()
	log := logger.NewWithLevel(cfg.Env, cfg.LogLevel)
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, stop, cfg, log, prometheus_metrics.NewPrometheusMetricsProvider(), openStorage)
	stop()
	if err != nil {
		log.Error("Service stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run serves until ctx is done or a server fails. Every resource it opens is
// closed before it returns.
func run(ctx context.Context, stop context.CancelFunc, cfg *config.Config, log *logger.Logger, metrics ports.MetricsProvider, open storageOpener) error {
	store, err := open(ctx, cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.close()

	scope := session.NewScope(store.uow, log, metrics)
	var postService post_service_port.Service = post_service.NewPostService(scope, log, metrics)

	if cfg.Redis.Enabled {
		log.Info("Connecting to Redis",
			slog.String("address", cfg.Redis.Address),
			slog.Int("port", cfg.Redis.Port),
			slog.Int("db", cfg.Redis.DB))
		redisClient, err := redis_cache.NewClient(cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("create redis client: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", slog.String("error", err.Error()))
			}
		}()

		postCache := redis_cache.NewPostCache(redisClient, log, cfg.Redis.TTL)
		postService = post_service.NewPostServiceCacheDecorator(postService, postCache, log, metrics)
	}

	router := http_server.NewRouter(postService, store.health, log, metrics)
	httpServer := http_server.NewServer(cfg.HTTPServer, router, log)
	metricsServer := metrics_server.NewMetricsServer(cfg.Prometheus.Address, cfg.Prometheus.Port, log)

	var grpcServer *grpc_server.Server
	if cfg.GRPCServer.Enabled {
		grpcServer = grpc_server.NewServer(cfg.GRPCServer.Address, cfg.GRPCServer.Port, store.health, log, metrics)
	}

	metrics.SetServiceHealth(true)

	var wg sync.WaitGroup
	start := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				log.Error("Server error", slog.String("server", name), slog.String("error", err.Error()))
				stop()
			}
		}()
	}

	start("http", httpServer.Run)
	start("metrics", metricsServer.Run)
	if grpcServer != nil {
		start("grpc", grpcServer.Run)
		go grpcServer.WatchHealth(ctx, 15*time.Second)
	}

	<-ctx.Done()
	log.Info("Shutting down servers...")
	metrics.SetServiceHealth(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", slog.String("error", err.Error()))
	}
	if grpcServer != nil {
		if err := grpcServer.Shutdown(); err != nil {
			log.Error("gRPC server shutdown error", slog.String("error", err.Error()))
		}
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown error", slog.String("error", err.Error()))
	}

	wg.Wait()
	log.Info("Servers stopped")
	return nil
}
