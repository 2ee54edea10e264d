// Package router wires up the API routes and applies the middleware chain.
package router

import (
	"net/http"
	"time"

	apihandler "github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/api/handler"
	apimw "github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/api/middleware"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/middleware"
)

// Deps are the collaborators the router dispatches to. Limiter may be nil
// to disable rate limiting.
type Deps struct {
	Handler        *apihandler.Handler
	Health         *health.Checker
	Metrics        *metrics.Metrics
	Limiter        *ratelimit.Limiter
	CORS           apimw.CORSConfig
	RequestTimeout time.Duration
}

// New builds the full HTTP handler with all routes and middleware.
//
// Route table:
//
//	GET    /                  → service status
//	POST   /analyze           → job/résumé analysis
//	GET    /analytics         → aggregated analysis statistics
//	GET    /cache/stats       → analysis cache statistics
//	POST   /cache/invalidate  → drop cached analyses
//	GET    /health/live       → liveness probe
//	GET    /health/ready      → readiness probe
//
// Middleware chain (outermost first):
//
//	RequestID → Metrics → CORS → RateLimit → Timeout → mux
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", d.Handler.Root)
	mux.HandleFunc("POST /analyze", d.Handler.Analyze)

	mux.HandleFunc("GET /analytics", d.Handler.Analytics)

	mux.HandleFunc("GET /cache/stats", d.Handler.CacheStats)
	mux.HandleFunc("POST /cache/invalidate", d.Handler.CacheInvalidate)

	mux.HandleFunc("GET /health/live", d.Health.LiveHandler())
	mux.HandleFunc("GET /health/ready", d.Health.ReadyHandler())

	// request → RequestID → Metrics → CORS → RateLimit → Timeout → mux
	var chain http.Handler = mux
	chain = pkgmw.Timeout(d.RequestTimeout)(chain)
	if d.Limiter != nil {
		chain = apimw.RateLimit(d.Limiter, d.Metrics)(chain)
	}
	chain = apimw.CORS(d.CORS)(chain)
	chain = pkgmw.Metrics(d.Metrics,
		"/", "/analyze", "/analytics", "/cache/stats", "/cache/invalidate", "/health/live", "/health/ready",
	)(chain)
	chain = pkgmw.RequestID(chain)

	return chain
}
