package grpc

import (
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/adapter/grpc/middleware"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// publicMethods skip authentication.
var publicMethods = map[string]bool{
	healthpb.Health_Check_FullMethodName: true,
}

// NewGRPCServer builds the gRPC server with tracing, logging and auth, and
// registers the health service. The returned cleanup stops it gracefully.
func NewGRPCServer(appLogger *logger.Logger, jwtSecret, serviceName string) (*grpc.Server, *health.Server, func()) {
	unaryInterceptors := []grpc.UnaryServerInterceptor{
		middleware.LoggingInterceptor(appLogger),
		middleware.AuthInterceptor(jwtSecret, appLogger, publicMethods),
	}

	server := grpc.NewServer(
		grpc.StatsHandler(middleware.TracingHandler()),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	appLogger.Info("gRPC server configured with interceptors: Tracing, Logging, Auth")

	cleanup := func() {
		appLogger.Info("Calling gRPC server's GracefulStop...")
		healthServer.Shutdown()
		server.GracefulStop()
		appLogger.Info("gRPC server GracefulStop completed.")
	}
	return server, healthServer, cleanup
}
