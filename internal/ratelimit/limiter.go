// Package ratelimit paces outbound calls to upstream APIs.
//
// Each source gets a minimum interval between calls. Concurrent
// callers are not queued fairly; whoever wakes first proceeds, which
// is acceptable because the intent is politeness toward upstreams,
// not strict scheduling.
package ratelimit

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval applies to sources without an explicit interval.
const DefaultInterval = time.Second

// Limiter enforces a minimum spacing between calls per source key.
// Keys may be namespaced like "quote:AAPL"; the interval is then
// resolved from the class before the colon while the pacing state
// stays per-key.
type Limiter struct {
	mu        sync.Mutex
	last      map[string]time.Time
	intervals map[string]time.Duration
	log       zerolog.Logger

	// jitter returns the extra delay added when a wait occurs, so
	// bursts against the same upstream spread out instead of firing
	// in lockstep the moment the interval elapses.
	jitter func() time.Duration
}

// New creates a limiter with no per-source intervals configured.
func New(log zerolog.Logger) *Limiter {
	return &Limiter{
		last:      make(map[string]time.Time),
		intervals: make(map[string]time.Duration),
		log:       log.With().Str("component", "ratelimit").Logger(),
		jitter: func() time.Duration {
			// Uniform in [100ms, 500ms)
			return 100*time.Millisecond + time.Duration(rand.Int63n(int64(400*time.Millisecond)))
		},
	}
}

// SetInterval configures the minimum spacing for a source or source
// class. Call during setup, before serving traffic.
func (l *Limiter) SetInterval(source string, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intervals[source] = interval
}

// Wait blocks until the source's interval has elapsed since its last
// recorded call, then records the current time. The first call for a
// key never waits. Jitter is added only when an actual wait occurs.
// Returns the context error if ctx is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	interval := l.intervalLocked(key)
	elapsed := time.Since(l.last[key])
	l.mu.Unlock()

	if elapsed < interval {
		wait := interval - elapsed + l.jitter()
		l.log.Debug().
			Str("source", key).
			Dur("wait", wait).
			Msg("Pacing outbound call")

		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.mu.Lock()
	l.last[key] = time.Now()
	l.mu.Unlock()
	return nil
}

// intervalLocked resolves the interval for a key: exact match first,
// then the class before the first colon, then the default.
func (l *Limiter) intervalLocked(key string) time.Duration {
	if d, ok := l.intervals[key]; ok {
		return d
	}
	if i := strings.IndexByte(key, ':'); i > 0 {
		if d, ok := l.intervals[key[:i]]; ok {
			return d
		}
	}
	return DefaultInterval
}
