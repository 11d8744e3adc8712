package middleware

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)

		if err != nil {
			log.Warn("gRPC request failed", "method", info.FullMethod, "duration", duration, "code", status.Code(err).String(), "error", err)
		} else {
			log.Debug("gRPC request completed", "method", info.FullMethod, "duration", duration)
		}
		return resp, err
	}
}
