package grpc_server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	ports "marites-post-service/internal/domain/ports/output"
)

// healthCheckTimeout bounds a single storage probe.
const healthCheckTimeout = 2 * time.Second

// ServiceName is the name reported by the health service besides the
// overall "" entry.
const ServiceName = "marites.post.v1.PostService"

// HealthChecker reports whether the storage backend is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type Server struct {
	server  *grpc.Server
	health  *health.Server
	checker HealthChecker
	address string
	port    int
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewServer(address string, port int, checker HealthChecker, log ports.Logger, metrics ports.MetricsProvider) *Server {
	healthServer := health.NewServer()

	server := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
			UnaryLoggerInterceptor(log, metrics),
			grpc_recovery.UnaryServerInterceptor(grpc_recovery.WithRecoveryHandler(func(p any) error {
				log.Error("Panic in gRPC handler", slog.Any("panic", p))
				return status.Error(codes.Internal, "internal error")
			})),
		)),
	)
	healthpb.RegisterHealthServer(server, healthServer)

	return &Server{
		server:  server,
		health:  healthServer,
		checker: checker,
		address: address,
		port:    port,
		log:     log,
		metrics: metrics,
	}
}

func (s *Server) Run() error {
	address := fmt.Sprintf("%s:%d", s.address, s.port)
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("Starting gRPC server", slog.String("address", lis.Addr().String()))
	return s.server.Serve(lis)
}

// Refresh runs the health check once and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	serving := healthpb.HealthCheckResponse_SERVING
	if err := s.checker.Check(ctx); err != nil {
		s.log.Warn("Storage health check failed", slog.String("error", err.Error()))
		serving = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", serving)
	s.health.SetServingStatus(ServiceName, serving)
	s.metrics.SetServiceHealth(serving == healthpb.HealthCheckResponse_SERVING)
}

// WatchHealth refreshes the health status every interval until ctx is done.
func (s *Server) WatchHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

func (s *Server) Shutdown() error {
	s.health.Shutdown()
	s.server.GracefulStop()
	return nil
}
