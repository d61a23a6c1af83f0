package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	c := NewTTLCache[string, int]()
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry should have expired")

	v, ok = c.Get("b")
	assert.True(t, ok, "zero ttl never expires")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestSweepDropsOnlyExpired(t *testing.T) {
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	c := NewTTLCache[string, int]()
	c.now = func() time.Time { return now }

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)
	c.Set("forever", 3, 0)

	assert.Equal(t, 0, c.Sweep())
	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 2, c.Len())

	var empty *TTLCache[string, int]
	assert.Equal(t, 0, empty.Sweep())
}

func TestNilCacheIsAMiss(t *testing.T) {
	var c *TTLCache[string, int]
	c.Set("a", 1, time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok)
}
