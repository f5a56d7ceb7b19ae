package grpc

import (
	"fmt"
	"log/slog"
	"net"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Ban68/LePret-sub001/internal/infrastructure/config"
	"github.com/Ban68/LePret-sub001/pkg/auth"
	"github.com/Ban68/LePret-sub001/pkg/tlsutil"
)

// Server wraps a gRPC server with the factoring handler registered.
type Server struct {
	gs     *grpclib.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server. TLS is enabled when both
// certificate files are configured; a pair that cannot be loaded is an error.
func NewServer(cfg config.GRPCConfig, handler FactoringServiceServer, validator auth.TokenValidator, logger *slog.Logger) (*Server, error) {
	authInterceptor := auth.UnaryAuthInterceptor(validator, []string{
		"/grpc.health.v1.Health/Check",
		"/grpc.health.v1.Health/Watch",
	})

	serverOpts := []grpclib.ServerOption{grpclib.UnaryInterceptor(authInterceptor)}

	if cfg.TLSEnabled() {
		creds, err := tlsutil.ServerTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("grpc tls: %w", err)
		}
		serverOpts = append(serverOpts, grpclib.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpclib.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	if cfg.Reflection {
		reflection.Register(gs)
	}

	RegisterFactoringServiceServer(gs, handler)

	return &Server{gs: gs, health: healthSrv, logger: logger}, nil
}

// Serve starts the gRPC server on addr and blocks until it stops.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.logger.Info("gRPC server listening", "addr", addr)
	return s.gs.Serve(lis)
}

// GracefulStop marks the service as not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}
