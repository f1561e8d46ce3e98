package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// APIKeyHeader carries the anonymous API key on public routes.
const APIKeyHeader = "apikey"

// AdminTokenHeader carries the admin token on /admin routes.
const AdminTokenHeader = "X-Admin-Token"

// RequireAPIKey rejects requests whose apikey header does not match. An
// empty expected key disables the check.
func RequireAPIKey(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				key = r.URL.Query().Get(APIKeyHeader)
			}
			if !tokensEqual(key, expected) {
				ctx := r.Context()
				logger.WarnContext(ctx, "api key mismatch",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "invalid or missing api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminToken guards admin routes. An empty expected token rejects
// every request so admin routes are closed unless configured.
func RequireAdminToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AdminTokenHeader)
			if expected == "" || !tokensEqual(token, expected) {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin token required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokensEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
