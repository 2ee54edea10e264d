package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/resilience"
)

func TestClientGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"model":"llama3.1","response":"Led a migration.","done":true}`))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL+"/", "llama3.1").Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "Led a migration.", text)
	assert.Equal(t, generateRequest{Model: "llama3.1", Prompt: "prompt", Stream: false}, got)
}

func TestClientGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, "status 500"},
		{"model missing", http.StatusNotFound, `{"error":"model not found"}`, "status 404"},
		{"bad json", http.StatusOK, `not json`, "decoding generate response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "llama3.1").Generate(context.Background(), "p")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestClientGenerate_MissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"done":true}`))
	}))
	defer srv.Close()

	text, err := NewClient(srv.URL, "llama3.1").Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL, "llama3.1").Ping(context.Background()))

	srv.Close()
	assert.Error(t, NewClient(srv.URL, "llama3.1").Ping(context.Background()))
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t,
		"Write one crisp STAR-style bullet (max 40 words) tailored to this JD.\nJD:\nGo role\n\nResume:\nI write Go\nBullet:",
		BuildPrompt("Go role", "I write Go"))
}

type fakeGenerator struct {
	calls atomic.Int32
	fn    func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	return f.fn(ctx, prompt)
}

func testConfig() config.OllamaConfig {
	return config.OllamaConfig{
		Timeout:          time.Second,
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(ctx context.Context, prompt string) (string, error)
		want   string
		result string
	}{
		{
			name:   "trimmed",
			fn:     func(ctx context.Context, p string) (string, error) { return "  Shipped X.\n", nil },
			want:   "Shipped X.",
			result: "ok",
		},
		{
			name:   "whitespace only",
			fn:     func(ctx context.Context, p string) (string, error) { return " \n\t", nil },
			want:   "",
			result: "empty",
		},
		{
			name:   "error",
			fn:     func(ctx context.Context, p string) (string, error) { return "", errors.New("connection refused") },
			want:   "",
			result: "error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			gen := &fakeGenerator{fn: tt.fn}
			h := NewHinter(gen, testConfig(), m)

			assert.Equal(t, tt.want, h.Hint(context.Background(), "jd", "resume"))
			assert.Equal(t, int32(1), gen.calls.Load())
			assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues(tt.result)))
		})
	}
}

func TestHint_Timeout(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	gen := &fakeGenerator{fn: func(ctx context.Context, p string) (string, error) {
		<-ctx.Done()
		return "late", ctx.Err()
	}}
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	h := NewHinter(gen, cfg, m)

	start := time.Now()
	assert.Empty(t, h.Hint(context.Background(), "jd", "resume"))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("timeout")))
}

func TestHint_BreakerOpensAndSkipsCalls(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	gen := &fakeGenerator{fn: func(ctx context.Context, p string) (string, error) {
		return "", errors.New("down")
	}}
	h := NewHinter(gen, testConfig(), m)

	for i := 0; i < 4; i++ {
		assert.Empty(t, h.Hint(context.Background(), "jd", "resume"))
	}

	assert.Equal(t, int32(2), gen.calls.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("circuit_open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("ollama")))
}

func TestHint_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	var healthy atomic.Bool
	gen := &fakeGenerator{fn: func(ctx context.Context, p string) (string, error) {
		if healthy.Load() {
			return "Cut p99 latency by 40%.", nil
		}
		<-ctx.Done()
		return "", ctx.Err()
	}}
	h := NewHinter(gen, testConfig(), m)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		assert.Empty(t, h.Hint(cancelled, "jd", "resume"))
	}
	assert.Equal(t, int32(0), gen.calls.Load())

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		assert.Empty(t, h.Hint(ctx, "jd", "resume"))
		cancel()
	}
	assert.Equal(t, resilience.StateClosed, h.BreakerState())

	healthy.Store(true)
	assert.Equal(t, "Cut p99 latency by 40%.", h.Hint(context.Background(), "jd", "resume"))
	assert.Equal(t, int32(4), gen.calls.Load())
	assert.Equal(t, 8.0, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("cancelled")))
	assert.Zero(t, testutil.ToFloat64(m.LLMRequestsTotal.WithLabelValues("circuit_open")))
}

func TestHinterHealthCheck(t *testing.T) {
	gen := &fakeGenerator{fn: func(ctx context.Context, p string) (string, error) {
		return "", errors.New("down")
	}}
	h := NewHinter(gen, testConfig(), metrics.New(prometheus.NewRegistry()))
	pings := 0
	check := h.HealthCheck(func(ctx context.Context) error { pings++; return nil })

	require.NoError(t, check(context.Background()))
	assert.Equal(t, 1, pings)

	h.Hint(context.Background(), "jd", "resume")
	h.Hint(context.Background(), "jd", "resume")
	require.Equal(t, resilience.StateOpen, h.BreakerState())

	assert.ErrorContains(t, check(context.Background()), "circuit open")
	assert.Equal(t, 1, pings)
}

func TestHint_AgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Prompt, "JD:\nNeed Go")
		w.Write([]byte(`{"response":"Built Go services handling 10k rps."}`))
	}))
	defer srv.Close()

	h := NewHinter(NewClient(srv.URL, "llama3.1"), testConfig(), metrics.New(prometheus.NewRegistry()))
	assert.Equal(t, "Built Go services handling 10k rps.", h.Hint(context.Background(), "Need Go", "Go dev"))
}
