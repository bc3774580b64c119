package authutils_test

import (
	"context"
	"testing"
	"time"

	"novel-relay/internal/authutils"
	"novel-relay/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims *models.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifyToken(t *testing.T) {
	verifier, err := authutils.NewJWTVerifier(testSecret, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Valid token", func(t *testing.T) {
		token := signToken(t, testSecret, &models.Claims{
			UserID: userID,
			Roles:  []string{models.RoleUser},
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		claims, err := verifier.VerifyToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, []string{models.RoleUser}, claims.Roles)
	})

	t.Run("Expired token", func(t *testing.T) {
		token := signToken(t, testSecret, &models.Claims{
			UserID: userID,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		_, err := verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, models.ErrTokenExpired)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token := signToken(t, "other", &models.Claims{UserID: userID})
		_, err := verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("Malformed token", func(t *testing.T) {
		_, err := verifier.VerifyToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, models.ErrTokenMalformed)
	})

	t.Run("Missing user id", func(t *testing.T) {
		token := signToken(t, testSecret, &models.Claims{Roles: []string{models.RoleUser}})
		_, err := verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("Empty secret", func(t *testing.T) {
		_, err := authutils.NewJWTVerifier("", nil)
		assert.Error(t, err)
	})
}
