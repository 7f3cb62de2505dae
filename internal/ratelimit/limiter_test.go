package ratelimit

import (
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestAllowBurstThenDeny(t *testing.T) {
	s := NewStore(rate.Limit(0.001), 3, time.Hour)

	for i := 0; i < 3; i++ {
		if !s.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed within burst", i+1)
		}
	}
	if s.Allow("1.2.3.4") {
		t.Fatal("request past burst should be denied")
	}

	// Independent keys have independent buckets.
	if !s.Allow("5.6.7.8") {
		t.Fatal("fresh key should be allowed")
	}
}

func TestLazyExpiryResetsBucket(t *testing.T) {
	s := NewStore(rate.Limit(0.001), 1, time.Minute)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	if !s.Allow("k") {
		t.Fatal("first request should pass")
	}
	if s.Allow("k") {
		t.Fatal("second request should be denied")
	}

	// After the TTL the entry is replaced with a fresh bucket.
	current = current.Add(2 * time.Minute)
	if !s.Allow("k") {
		t.Fatal("request after TTL should pass again")
	}
}

func TestSweepDropsIdleKeys(t *testing.T) {
	s := NewStore(rate.Limit(1), 1, time.Minute)
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	s.Allow("a")
	s.Allow("b")
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}

	current = current.Add(30 * time.Second)
	s.Allow("b")

	current = current.Add(45 * time.Second)
	s.sweep()

	// "a" idled past the TTL, "b" did not.
	if s.Len() != 1 {
		t.Fatalf("Len after sweep = %d, want 1", s.Len())
	}
}
