package middleware

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc/stats"
)

// TracingHandler traces every RPC with the global TracerProvider and
// propagator.
func TracingHandler() stats.Handler {
	return otelgrpc.NewServerHandler()
}
