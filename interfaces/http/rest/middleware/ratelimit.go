package middleware

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"mindmap-backend/pkg/auth"
	"mindmap-backend/pkg/common"
	pkgerrors "mindmap-backend/pkg/errors"
)

// RateLimit throttles requests per owner, or per client IP before an owner
// is known
func RateLimit(limiter auth.RateLimiter, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + getClientIP(r)
			if owner, ok := common.GetOwnerID(r.Context()); ok {
				key = "owner:" + owner
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// A broken limiter must not take the API down
				logger.Error("Rate limiter error", zap.Error(err), zap.String("key", key))
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			if !allowed {
				errorHandler.Handle(w, r, pkgerrors.NewRateLimitError(limiter.Limit(), "minute"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
