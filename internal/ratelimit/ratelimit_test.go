package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, window time.Duration) (*Limiter, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(limit, window)
	l.now = c.now
	return l, c
}

func TestAllow_BurstThenRefill(t *testing.T) {
	l, c := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "keys are independent")

	c.advance(20 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestAllow_RefillIsCapped(t *testing.T) {
	l, c := newTestLimiter(2, time.Minute)
	l.Allow("k")
	c.advance(time.Hour)

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
}

func TestSweep(t *testing.T) {
	l, c := newTestLimiter(1, time.Minute)
	l.Allow("old")
	c.advance(3 * time.Minute)
	l.Allow("new")
	l.sweep()

	assert.NotContains(t, l.entries, "old")
	assert.Contains(t, l.entries, "new")
}

func TestRetryAfter(t *testing.T) {
	l, _ := newTestLimiter(60, time.Minute)
	assert.Equal(t, time.Second, l.RetryAfter())
}
