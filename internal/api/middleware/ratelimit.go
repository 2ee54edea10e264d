package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/metrics"
)

// RateLimit rejects clients that exceed the limiter's budget with 429.
// Clients are keyed by remote IP. Health probes and CORS preflights are
// never limited.
func RateLimit(limiter *ratelimit.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(limiter.RetryAfter().Seconds())))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			client := clientIP(r)
			if !limiter.Allow(client) {
				m.RateLimitedTotal.Inc()
				logger.FromContext(r.Context()).Warn("rate limit exceeded", "client", client)
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
