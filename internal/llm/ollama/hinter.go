package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/resilience"
)

const promptTemplate = "Write one crisp STAR-style bullet (max 40 words) tailored to this JD.\nJD:\n%s\n\nResume:\n%s\nBullet:"

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Hinter asks a Generator for one tailored bullet. It makes at most one
// attempt per call and reports every failure as an empty hint.
type Hinter struct {
	gen     Generator
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
}

// NewHinter wires gen behind a circuit breaker configured from cfg.
func NewHinter(gen Generator, cfg config.OllamaConfig, m *metrics.Metrics) *Hinter {
	breaker := resilience.NewCircuitBreaker("ollama", resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.FailureThreshold,
		ResetTimeout:     cfg.ResetTimeout,
		OnStateChange: func(name string, to resilience.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	m.CircuitBreakerState.WithLabelValues("ollama").Set(float64(resilience.StateClosed))
	return &Hinter{
		gen:     gen,
		timeout: cfg.Timeout,
		breaker: breaker,
		metrics: m,
	}
}

// BuildPrompt renders the single-bullet prompt for a job description and
// résumé.
func BuildPrompt(jobText, resumeText string) string {
	return fmt.Sprintf(promptTemplate, jobText, resumeText)
}

// Hint returns the trimmed completion, or "" if the call failed, timed out,
// was refused by the open breaker, or produced only whitespace. A call
// abandoned because ctx ended is not counted against the upstream.
func (h *Hinter) Hint(ctx context.Context, jobText, resumeText string) string {
	log := logger.FromContext(ctx).With("component", "ollama-hinter")
	if ctx.Err() != nil {
		h.metrics.LLMRequestsTotal.WithLabelValues("cancelled").Inc()
		log.Debug("generative hint skipped", "reason", ctx.Err())
		return ""
	}

	prompt := BuildPrompt(jobText, resumeText)
	start := time.Now()

	var text string
	var callErr error
	err := h.breaker.Execute(func() error {
		text, callErr = resilience.WithTimeout(ctx, h.timeout, "ollama generate", func(ctx context.Context) (string, error) {
			return h.gen.Generate(ctx, prompt)
		})
		if callErr != nil && ctx.Err() != nil {
			return nil
		}
		return callErr
	})

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		h.metrics.LLMRequestsTotal.WithLabelValues("circuit_open").Inc()
		log.Debug("generative hint skipped", "reason", err)
		return ""
	case callErr != nil && err == nil:
		h.metrics.LLMRequestsTotal.WithLabelValues("cancelled").Inc()
		log.Debug("generative hint abandoned", "reason", ctx.Err())
		return ""
	case errors.Is(err, apperrors.ErrTimeout):
		h.metrics.LLMRequestsTotal.WithLabelValues("timeout").Inc()
		h.metrics.LLMLatency.Observe(time.Since(start).Seconds())
		log.Warn("generative hint timed out", "error", err)
		return ""
	case err != nil:
		h.metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		h.metrics.LLMLatency.Observe(time.Since(start).Seconds())
		log.Warn("generative hint failed", "error", err)
		return ""
	}

	h.metrics.LLMLatency.Observe(time.Since(start).Seconds())
	text = strings.TrimSpace(text)
	if text == "" {
		h.metrics.LLMRequestsTotal.WithLabelValues("empty").Inc()
		return ""
	}
	h.metrics.LLMRequestsTotal.WithLabelValues("ok").Inc()
	log.Debug("generative hint received", "chars", len(text))
	return text
}

// BreakerState reports the state of the breaker guarding the upstream.
func (h *Hinter) BreakerState() resilience.State {
	return h.breaker.GetState()
}

// HealthCheck reports the upstream as unavailable while the breaker is open
// and otherwise defers to ping.
func (h *Hinter) HealthCheck(ping func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if state := h.BreakerState(); state == resilience.StateOpen {
			return fmt.Errorf("ollama circuit %s", state)
		}
		return ping(ctx)
	}
}
