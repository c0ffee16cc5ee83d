package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"cinema-reservation/internal/auth"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

const AdminKeyHeader = "X-Admin-Key"

// Authenticate resolves the bearer token to a user id and stores both in the
// request context.
func Authenticate(authn auth.Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			userID, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					logger.Warn("Rejected token",
						zap.Error(err),
						zap.String("request_id", utils.GetRequestIDFromContext(r.Context())))
					utils.ResponseUnauthorized(w, "Invalid or expired token")
					return
				}
				logger.Error("Failed to validate token", zap.Error(err))
				utils.ResponseServiceUnavailable(w, "Authentication temporarily unavailable")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID)
			ctx = utils.SetTokenContext(ctx, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminKey guards operator routes with a shared key. An empty key disables
// the routes entirely.
func AdminKey(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				utils.ResponseForbidden(w, "Admin access disabled")
				return
			}

			given := r.Header.Get(AdminKeyHeader)
			if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
				logger.Warn("Admin check: bad key",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
