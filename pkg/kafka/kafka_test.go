package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Score float64 `json:"score"`
	LLM   bool    `json:"llm"`
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON[sample]([]byte(`{"score":0.25,"llm":true}`))
	require.NoError(t, err)
	assert.Equal(t, sample{Score: 0.25, LLM: true}, got)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := DecodeJSON[sample]([]byte(`{"score":`))
	assert.ErrorContains(t, err, "decoding kafka message")
}

func TestPing_NoBrokers(t *testing.T) {
	assert.Error(t, Ping(context.Background(), nil))
}
