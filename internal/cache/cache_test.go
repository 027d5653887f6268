package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c := New[string](time.Minute, 10)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestCache_SweepsWhenFull(t *testing.T) {
	c := New[int](time.Minute, 2)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	now = now.Add(2 * time.Minute)
	c.Set("b", 2)
	c.Set("c", 3)

	_, ok := c.Get("a")
	require.False(t, ok)
	v, ok := c.Get("c")
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, 2, c.Len())
}

func TestCache_Delete(t *testing.T) {
	c := New[int](0, 0)
	c.Set("a", 1)
	c.Delete("a")

	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestCache_GetKeepsEntryRefreshedAfterStaleRead(t *testing.T) {
	c := New[string](time.Minute, 10)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "old")
	now = now.Add(2 * time.Minute)

	// refresh the key between Get's read and its expiry check
	refreshed := false
	c.now = func() time.Time {
		if !refreshed {
			refreshed = true
			c.Set("k", "new")
		}
		return now
	}

	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "new", got)
	require.Equal(t, 1, c.Len())

	got, ok = c.Get("k")
	require.True(t, ok)
	require.Equal(t, "new", got)
}

func TestCache_ConcurrentSetGet(t *testing.T) {
	c := New[int](time.Millisecond, 64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				c.Set("shared", j)
				c.Get("shared")
				c.Delete("gone")
			}
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 1)
}
