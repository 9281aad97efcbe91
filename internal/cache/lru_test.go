package cache

import (
	"context"
	"testing"
	"time"

	"finboard/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clock.now)

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	clock.advance(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry must expire exactly at its TTL")
	assert.Equal(t, 0, c.Size())

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestSetWithTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Hour).WithClock(clock.now)

	c.SetWithTTL("short", "x", time.Second)
	c.Set("long", "y")
	c.SetWithTTL("never", "z", 0)

	_, ok := c.Get("never")
	assert.False(t, ok)

	clock.advance(2 * time.Second)
	assert.Equal(t, 1, c.CleanExpired())
	_, ok = c.Get("long")
	assert.True(t, ok)
}

func TestJanitorSweepsRegisteredCaches(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := NewLRUCache[int](10, time.Second).WithClock(clock.now)
	b := NewLRUCache[int](10, time.Second).WithClock(clock.now)
	a.Set("x", 1)
	b.Set("y", 2)
	b.Set("z", 3)

	j := NewJanitor(log.Discard())
	j.Register(a)
	j.Register(b)

	clock.advance(time.Minute)
	assert.Equal(t, 3, j.Sweep())

	ctx, cancel := context.WithCancel(context.Background())
	j.Start(ctx, time.Millisecond)
	cancel()
	j.Wait()
}
