package middleware

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const secret = "test-secret"

func call(t *testing.T, ctx context.Context, method string) (*domain.User, error) {
	t.Helper()
	var seen *domain.User
	interceptor := AuthInterceptor(secret, logger.NewNop(), map[string]bool{"/svc/Public": true})
	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, func(ctx context.Context, _ interface{}) (interface{}, error) {
		seen = auth.UserFromContext(ctx)
		return "ok", nil
	})
	return seen, err
}

func TestAuthInterceptor_PublicMethod(t *testing.T) {
	u, err := call(t, context.Background(), "/svc/Public")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestAuthInterceptor_MissingToken(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.MD{})

	_, err := call(t, ctx, "/svc/Private")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = call(t, context.Background(), "/svc/Private")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuthInterceptor_ValidToken(t *testing.T) {
	tok, err := auth.NewToken(secret, &domain.User{ID: "u-1", Role: domain.RoleUser}, jwt.RegisteredClaims{})
	require.NoError(t, err)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))

	u, err := call(t, ctx, "/svc/Private")

	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u-1", u.ID)
}

func TestAuthInterceptor_BadSignature(t *testing.T) {
	tok, err := auth.NewToken("other-secret", &domain.User{ID: "u-1"}, jwt.RegisteredClaims{})
	require.NoError(t, err)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+tok))

	_, err = call(t, ctx, "/svc/Private")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
