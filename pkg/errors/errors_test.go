package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", ErrInvalidInput, http.StatusUnprocessableEntity},
		{"wrapped invalid input", fmt.Errorf("decoding: %w", ErrInvalidInput), http.StatusUnprocessableEntity},
		{"malformed body", ErrMalformedBody, http.StatusBadRequest},
		{"too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"upstream", ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"app error status wins", New(ErrInvalidInput, http.StatusTeapot, "short"), http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestAppError(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusUnprocessableEntity, "field %s is required", "job_text")

	assert.EqualError(t, err, "invalid input: field job_text is required")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
