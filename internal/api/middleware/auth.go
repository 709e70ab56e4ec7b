package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/noble-diary/internal/api/shared"
	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/redact"
	"github.com/phrazzld/noble-diary/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes. Only tokens issued
// to the configured noble are accepted.
type AuthMiddleware struct {
	jwtService auth.JWTService
	nobleID    string
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, nobleID string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		nobleID:    nobleID,
	}
}

// Authenticate validates the bearer token and stores its subject in the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContextOrDefault(r.Context(), slog.Default()).
					Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		if claims.Subject != m.nobleID {
			shared.RespondWithError(w, r, http.StatusForbidden, "Token not issued for this noble")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithSubject(r.Context(), claims.Subject)))
	})
}
