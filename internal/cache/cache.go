// Package cache memoizes the deterministic part of an analysis in Redis so
// repeated job/résumé pairs skip extraction and ranking.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/redis"
)

const keyPrefix = "analysis:"

// Status describes how a Fetch was served.
type Status string

const (
	StatusHit      Status = "hit"
	StatusMiss     Status = "miss"
	StatusDisabled Status = "disabled"
)

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// Cache stores JSON-encoded values of type T. Store failures degrade to
// computing the value directly.
type Cache[T any] struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
	errors  atomic.Int64
}

// New creates a Cache over store whose entries expire after ttl.
func New[T any](store Store, ttl time.Duration, m *metrics.Metrics) *Cache[T] {
	return &Cache[T]{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  logger.WithComponent("analysis-cache"),
	}
}

// Key derives the cache key for a pair of texts and a keyword limit. Texts
// are hashed exactly as received: extraction matches on the raw bytes, so
// inputs that differ only in case may produce different profiles.
func Key(jobText, resumeText string, keywordLimit int) string {
	h := sha256.New()
	for _, s := range []string{jobText, resumeText} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	fmt.Fprintf(h, "limit=%d", keywordLimit)
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16])
}

func (c *Cache[T]) get(ctx context.Context, key string) (T, bool) {
	var zero T
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.errors.Add(1)
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.errors.Add(1)
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return zero, false
	}
	return v, true
}

func (c *Cache[T]) set(ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.errors.Add(1)
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Fetch returns the cached value for key, or runs compute once across
// concurrent callers for the same key and stores its result.
func (c *Cache[T]) Fetch(ctx context.Context, key string, compute func() T) (T, Status) {
	if v, ok := c.get(ctx, key); ok {
		c.hit(key)
		return v, StatusHit
	}
	val, _, shared := c.group.Do(key, func() (any, error) {
		if v, ok := c.get(ctx, key); ok {
			return v, nil
		}
		v := compute()
		c.set(ctx, key, v)
		return v, nil
	})
	if shared {
		c.logger.Debug("cache fill shared", "key", key)
	}
	c.misses.Add(1)
	c.metrics.CacheMissesTotal.Inc()
	return val.(T), StatusMiss
}

func (c *Cache[T]) hit(key string) {
	c.hits.Add(1)
	c.metrics.CacheHitsTotal.Inc()
	c.logger.Debug("cache hit", "key", key)
}

// Invalidate deletes every analysis entry.
func (c *Cache[T]) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

// Stats returns hit, miss and error counts since start.
func (c *Cache[T]) Stats() Stats {
	s := Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
