package grpc

import (
	"context"
	"net"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthServer exposes the standard gRPC health protocol for orchestrators.
type HealthServer struct {
	server      *grpc.Server
	health      *health.Server
	serviceName string
	logger      *logger.Logger
}

func NewHealthServer(serviceName string, log *logger.Logger) *HealthServer {
	srv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &HealthServer{
		server:      srv,
		health:      hs,
		serviceName: serviceName,
		logger:      log.Named("HealthServer"),
	}
	s.SetServing(true)
	return s
}

func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info("Starting gRPC health server", zap.String("addr", lis.Addr().String()))
	return s.server.Serve(lis)
}

// SetServing updates both the named service and the overall server status.
func (s *HealthServer) SetServing(ok bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ok {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(s.serviceName, status)
	s.health.SetServingStatus("", status)
}

// Watch runs check every interval and mirrors its result until ctx is done.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration, check func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			err := check(checkCtx)
			cancel()

			if ok := err == nil; ok != serving {
				serving = ok
				s.SetServing(ok)
				if ok {
					s.logger.Info("Dependencies healthy again")
				} else {
					s.logger.Warn("Health check failed", zap.Error(err))
				}
			}
		}
	}
}

func (s *HealthServer) GracefulStop() {
	s.SetServing(false)
	s.health.Shutdown()
	s.server.GracefulStop()
}
