// Package ratelimit provides a TTL-backed keyed limiter store. Per-key state
// expires on its own, both lazily on access and through a periodic sweep, so
// the store never grows without bound.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Store holds one token-bucket limiter per key (typically a client IP).
type Store struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewStore creates a limiter store allowing r events per second with the
// given burst. Keys idle longer than ttl are dropped.
func NewStore(r rate.Limit, burst int, ttl time.Duration) *Store {
	return &Store{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Allow reports whether the event for key may proceed now.
func (s *Store) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.limiters[key]
	if !ok || now.Sub(e.lastSeen) > s.ttl {
		// Lazy expiry: an idle entry is replaced with a fresh bucket.
		e = &limiterEntry{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.limiters[key] = e
	}
	e.lastSeen = now

	return e.limiter.Allow()
}

// Len returns the number of tracked keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// sweep drops entries idle longer than the TTL.
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.limiters {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.limiters, key)
		}
	}
}

// StartSweeper runs a periodic sweep until the context is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}
