package server

import (
	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	authv1 "auth-service/api/auth/v1"
	healthhandler "auth-service/internal/health/handler"
	identityhandler "auth-service/internal/identity/handler"
	"auth-service/internal/server/interceptors"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Auth is the session engine. If nil, auth RPCs return Unimplemented.
	Auth identityhandler.AuthService
	// HealthPinger is used by the health service for readiness (e.g. *pgxpool.Pool). If nil, Check skips the DB ping.
	HealthPinger healthhandler.Pinger
}

// skipLogging lists methods the logging interceptor does not log.
var skipLogging = map[string]bool{
	healthpb.Health_Check_FullMethodName: true,
}

// NewServer returns a gRPC server with the otelgrpc stats handler and the logging and
// bearer interceptors installed. opts are appended after the defaults.
func NewServer(logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.LoggingUnary(logger, skipLogging),
			interceptors.BearerUnary(),
		),
	}
	return grpc.NewServer(append(base, opts...)...)
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - auth.v1.AuthService → internal/identity/handler
//   - grpc.health.v1.Health → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	authv1.RegisterAuthServiceServer(s, identityhandler.NewAuthServer(deps.Auth))
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(deps.HealthPinger, authv1.ServiceName))
}
