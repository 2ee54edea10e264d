package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Timeout bounds the request context. Handlers observe the deadline through
// r.Context(); the generative call is the only step that can block on it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
			if ctx.Err() == context.DeadlineExceeded {
				slog.Warn("request exceeded deadline", "method", r.Method, "path", r.URL.Path, "timeout", timeout)
			}
		})
	}
}
