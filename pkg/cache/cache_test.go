package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestInMemoryCache_Expiry(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewInMemoryCache[string, int](5*time.Second, WithClock(clk.Now), WithCleanupInterval(0))
	defer c.Close()

	c.Set("a", 1, 0)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clk.Advance(4 * time.Second)
	_, ok = c.Get("a")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok, "到期即失效")

	v, present, fresh := c.Peek("a")
	assert.Equal(t, 1, v)
	assert.True(t, present)
	assert.False(t, fresh)

	c.cleanup()
	assert.Zero(t, c.Size())
}

func TestInMemoryCache_DeleteClear(t *testing.T) {
	c := NewInMemoryCache[string, string](time.Minute, WithCleanupInterval(0))
	c.Set("a", "x", 0)
	c.Set("b", "y", time.Hour)
	c.Delete("a")
	assert.Equal(t, 1, c.Size())
	c.Clear()
	assert.Zero(t, c.Size())
	_, present, _ := c.Peek("b")
	assert.False(t, present)
	c.Close()
	c.Close()
}
