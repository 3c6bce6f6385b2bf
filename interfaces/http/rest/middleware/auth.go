package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"mindmap-backend/pkg/auth"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
)

// DevOwnerHeader names the owner when authentication is disabled
const DevOwnerHeader = "X-Owner-ID"

// Authenticate validates bearer tokens and records the token subject as the
// map owner
func Authenticate(validator *auth.JWTValidator, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError("missing authentication token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("ip", getClientIP(r)),
					zap.String("path", r.URL.Path),
				)
				errorHandler.Handle(w, r, pkgerrors.NewUnauthorizedError(tokenMessage(err)))
				return
			}

			ctx := common.WithOwnerID(r.Context(), claims.UserID)

			logger.Debug("Request authenticated",
				zap.String("owner_id", claims.UserID),
				zap.Strings("roles", claims.Roles),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DevelopmentOwner trusts the X-Owner-ID header, falling back to
// defaultOwner. Only for local runs with authentication disabled.
func DevelopmentOwner(defaultOwner string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := strings.TrimSpace(r.Header.Get(DevOwnerHeader))
			if owner == "" {
				owner = defaultOwner
			}
			next.ServeHTTP(w, r.WithContext(common.WithOwnerID(r.Context(), owner)))
		})
	}
}

func tokenMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "token has expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid token signature"
	case errors.Is(err, auth.ErrInvalidClaims):
		return "invalid token claims"
	}
	return "invalid token"
}

// extractToken reads the bearer token from the Authorization header or the
// auth_token cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return strings.TrimSpace(authHeader)
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
