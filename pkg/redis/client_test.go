package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/config"
)

func TestIsNilError(t *testing.T) {
	assert.True(t, IsNilError(goredis.Nil))
	assert.True(t, IsNilError(fmt.Errorf("get: %w", goredis.Nil)))
	assert.False(t, IsNilError(errors.New("connection refused")))
	assert.False(t, IsNilError(nil))
}

func TestNewClient_UnreachableFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := NewClient(ctx, config.RedisConfig{Addr: "127.0.0.1:1", PoolSize: 1})

	assert.Nil(t, client)
	assert.ErrorContains(t, err, "redis ping failed")
}
