package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterAllowWithinWindow(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := l.Allow(ctx, "key", window, max)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if want := max - (i + 1); remaining != want {
			t.Fatalf("remaining = %d, want %d", remaining, want)
		}
	}

	allowed, remaining, reset, err := l.Allow(ctx, "key", window, max)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatal("request above the limit should be rejected")
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
	if reset.Before(time.Now().Add(-time.Second)) {
		t.Fatalf("reset %v should be in the future", reset)
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	if allowed, _, _, _ := l.Allow(ctx, "a", time.Second, 1); !allowed {
		t.Fatal("first request for key a should pass")
	}
	if allowed, _, _, _ := l.Allow(ctx, "b", time.Second, 1); !allowed {
		t.Fatal("first request for key b should pass")
	}
	if allowed, _, _, _ := l.Allow(ctx, "a", time.Second, 1); allowed {
		t.Fatal("second request for key a should be limited")
	}
}

func TestMemoryLimiterUnconfigured(t *testing.T) {
	var l *MemoryLimiter
	allowed, _, _, err := l.Allow(context.Background(), "k", time.Second, 5)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !allowed {
		t.Fatal("nil limiter should admit everything")
	}

	zero := &MemoryLimiter{}
	allowed, _, _, err = zero.Allow(context.Background(), "k", 0, 0)
	if err != nil || !allowed {
		t.Fatal("zero-window limiter should admit everything")
	}
}
