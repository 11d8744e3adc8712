package middleware

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthInterceptor authenticates every method not listed in publicMethods and
// stores the caller in the context.
func AuthInterceptor(jwtSecret string, log *logger.Logger, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			log.Warn("AuthInterceptor: missing metadata from context", "method", info.FullMethod)
			return nil, status.Errorf(codes.Unauthenticated, "metadata is not provided")
		}
		var header string
		if values := md.Get("authorization"); len(values) > 0 {
			header = values[0]
		}

		tokenString, err := auth.BearerToken(header)
		if err != nil {
			log.Warn("AuthInterceptor: bad authorization header", "method", info.FullMethod, "error", err)
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		user, err := auth.ParseToken(jwtSecret, tokenString)
		if err != nil {
			log.Warn("AuthInterceptor: token parsing or validation failed", "method", info.FullMethod, "error", err)
			if errors.Is(err, auth.ErrInvalidToken) {
				return nil, status.Error(codes.Unauthenticated, "token is not valid")
			}
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		log.Debug("AuthInterceptor: user authenticated", "method", info.FullMethod, "user_id", user.ID)
		return handler(auth.WithUser(ctx, user), req)
	}
}
