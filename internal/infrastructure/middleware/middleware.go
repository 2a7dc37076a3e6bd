package middleware

import (
	"net/http"

	"shopbridge-core/internal/domain"

	"github.com/rs/zerolog"
)

// SecurityHeadersMiddleware sets baseline security headers on every response.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUserMiddleware extracts the authenticated application user from the
// X-User-ID header, set by the upstream identity layer. Requests without it
// are rejected; the user id is added to the request context.
func RequireUserMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("Request without authenticated user")
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			ctx := domain.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
