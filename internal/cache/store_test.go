package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "search:apple", Key("search", "  Apple "))
	assert.Equal(t, "quote:aapl", Key("quote", "AAPL"))
	assert.Equal(t, "filings:0000320193:10", Key("filings", "0000320193", "10"))
	assert.Equal(t, "directory", Key("directory"))
}

func TestPutAndGet(t *testing.T) {
	s := New()

	s.Put("quote:aapl", 42, time.Minute)

	v, ok := s.Get("quote:aapl")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = s.Get("quote:msft")
	assert.False(t, ok)
}

func TestGetExpired(t *testing.T) {
	s := New()

	s.Put("quote:aapl", 42, 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	_, ok := s.Get("quote:aapl")
	assert.False(t, ok)

	// Expired entries stay in the map until Sweep runs.
	assert.Equal(t, 1, s.Len())
}

func TestPutOverwrites(t *testing.T) {
	s := New()

	s.Put("search:apple", "old", time.Minute)
	s.Put("search:apple", "new", time.Minute)

	v, ok := s.Get("search:apple")
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, s.Len())
}

func TestSweep(t *testing.T) {
	s := New()

	s.Put("stale:a", 1, 10*time.Millisecond)
	s.Put("stale:b", 2, 10*time.Millisecond)
	s.Put("fresh:c", 3, time.Minute)

	time.Sleep(25 * time.Millisecond)

	removed := s.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("fresh:c")
	assert.True(t, ok)

	// Second sweep finds nothing.
	assert.Equal(t, 0, s.Sweep())
}

func TestDelete(t *testing.T) {
	s := New()

	s.Put("quote:aapl", 42, time.Minute)
	s.Delete("quote:aapl")

	_, ok := s.Get("quote:aapl")
	assert.False(t, ok)

	// Deleting a missing key is a no-op.
	s.Delete("quote:missing")
}

func TestGetAs(t *testing.T) {
	s := New()

	s.Put("quote:aapl", "snapshot", time.Minute)

	v, ok := GetAs[string](s, "quote:aapl")
	require.True(t, ok)
	assert.Equal(t, "snapshot", v)

	// Wrong type counts as a miss.
	_, ok = GetAs[int](s, "quote:aapl")
	assert.False(t, ok)

	_, ok = GetAs[string](s, "quote:missing")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := Key("quote", fmt.Sprintf("sym%d", j%10))
				s.Put(key, n, time.Minute)
				s.Get(key)
				if j%25 == 0 {
					s.Sweep()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())
}

func TestSweepJob(t *testing.T) {
	s := New()
	s.Put("stale:a", 1, 10*time.Millisecond)
	s.Put("fresh:b", 2, time.Minute)

	time.Sleep(25 * time.Millisecond)

	job := NewSweepJob(s, zerolog.Nop())
	assert.Equal(t, "cache_sweep", job.Name())

	require.NoError(t, job.Run())
	assert.Equal(t, 1, s.Len())
}
