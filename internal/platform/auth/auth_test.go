package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestParseToken_RoundTrip(t *testing.T) {
	tok, err := NewToken(secret, &domain.User{ID: "u-1", DisplayName: "Ama", Role: domain.RoleAdmin}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	u, err := ParseToken(secret, tok)

	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "Ama", u.DisplayName)
	assert.True(t, u.IsAdmin())
}

func TestParseToken_DefaultsRole(t *testing.T) {
	tok, err := NewToken(secret, &domain.User{ID: "u-1"}, jwt.RegisteredClaims{})
	require.NoError(t, err)

	u, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, _ := NewToken(secret, &domain.User{ID: "u-1"}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	wrongKey, _ := NewToken("other", &domain.User{ID: "u-1"}, jwt.RegisteredClaims{})
	noUser, _ := NewToken(secret, &domain.User{}, jwt.RegisteredClaims{})

	for name, tok := range map[string]string{"expired": expired, "wrong key": wrongKey, "no user": noUser, "garbage": "abc"} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(secret, tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = BearerToken("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserFromContext(t *testing.T) {
	assert.Nil(t, UserFromContext(context.Background()))

	u := &domain.User{ID: "u-1"}
	assert.Same(t, u, UserFromContext(WithUser(context.Background(), u)))
}
