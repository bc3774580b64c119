package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"novel-relay/internal/models"

	"go.uber.org/zap"
)

// TokenVerifier проверяет строку токена и возвращает claims.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// AuthMiddleware проверяет Bearer-токен и кладёт UserID и роли в контекст запроса.
// requiredRoles, если заданы, требуют хотя бы одну из ролей.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger, requiredRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.With(zap.String("path", r.URL.Path))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Authorization header missing")
				writeJSONError(w, "Unauthorized: Missing token", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				log.Warn("Malformed Authorization header")
				writeJSONError(w, "Unauthorized: Malformed token header", http.StatusUnauthorized)
				return
			}

			claims, err := verifier(r.Context(), parts[1])
			if err != nil {
				status, msg := http.StatusUnauthorized, "Unauthorized: Invalid token"
				switch {
				case errors.Is(err, models.ErrTokenExpired):
					msg = "Unauthorized: Token expired"
				case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
				default:
					log.Error("Unexpected token verification error", zap.Error(err))
					status, msg = http.StatusInternalServerError, "Internal server error during token verification"
				}
				writeJSONError(w, msg, status)
				return
			}

			if len(requiredRoles) > 0 && !hasAnyRole(claims.Roles, requiredRoles) {
				log.Warn("User does not have required role",
					zap.String("userID", claims.UserID.String()),
					zap.Strings("userRoles", claims.Roles),
					zap.Strings("requiredRoles", requiredRoles))
				writeJSONError(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), models.UserContextKey, claims.UserID)
			ctx = context.WithValue(ctx, models.RolesContextKey, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasAnyRole(userRoles, required []string) bool {
	for _, role := range required {
		if models.HasRole(userRoles, role) {
			return true
		}
	}
	return false
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
