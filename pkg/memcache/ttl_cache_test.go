package mem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache[string, int]()
	c.now = func() time.Time { return now }

	c.Set("MYR", 2, time.Minute)
	v, ok := c.Get("MYR")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("MYR")
	assert.False(t, ok)
}

func TestTTLCacheZeroTTLDisablesCaching(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("USD", 2, 0)
	_, ok := c.Get("USD")
	assert.False(t, ok)
}

func TestTTLCachePurge(t *testing.T) {
	c := NewTTLCache[string, string]()
	c.Set("a", "1", time.Hour)
	c.Set("b", "2", time.Hour)
	c.Purge()
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}
