package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(ctx context.Context) error   { return nil }
func fail(ctx context.Context) error { return errors.New("connection refused") }

func TestRun_AllUp(t *testing.T) {
	c := NewChecker("ai-tailor", "0.2.0")
	c.Register("redis", OptionalDependency(up))
	c.Register("kafka", Disabled)

	report := c.Run(context.Background())

	assert.Equal(t, StatusUp, report.Status)
	assert.Equal(t, "ai-tailor", report.Service)
	assert.Equal(t, "disabled", report.Components["kafka"].Message)
	assert.NotEmpty(t, report.Components["redis"].Latency)
}

func TestRun_OptionalFailureDegrades(t *testing.T) {
	c := NewChecker("ai-tailor", "0.2.0")
	c.Register("redis", OptionalDependency(up))
	c.Register("ollama", OptionalDependency(fail))

	report := c.Run(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, "connection refused", report.Components["ollama"].Message)
}

func TestRun_DownWins(t *testing.T) {
	c := NewChecker("ai-tailor", "0.2.0")
	c.Register("a", OptionalDependency(fail))
	c.Register("b", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDown}
	})

	assert.Equal(t, StatusDown, c.Run(context.Background()).Status)
}

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name   string
		check  Check
		status int
	}{
		{"up", OptionalDependency(up), http.StatusOK},
		{"degraded", OptionalDependency(fail), http.StatusOK},
		{"down", func(ctx context.Context) ComponentHealth { return ComponentHealth{Status: StatusDown} }, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker("ai-tailor", "0.2.0")
			c.Register("dep", tt.check)

			rec := httptest.NewRecorder()
			c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.status, rec.Code)
			var report Report
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
			assert.Contains(t, report.Components, "dep")
		})
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker("ai-tailor", "0.2.0").LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
