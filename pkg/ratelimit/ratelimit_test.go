package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(limit int, window time.Duration) (*Limiter, *time.Time) {
	l := New(limit, window)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowDrainsAndRefills(t *testing.T) {
	l, now := newTestLimiter(3, time.Minute)
	defer l.Close()

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("fourth request allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other key must have its own bucket")
	}

	*now = now.Add(20 * time.Second)
	if !l.Allow("10.0.0.1") {
		t.Error("one token should have refilled after a third of the window")
	}
	if l.Allow("10.0.0.1") {
		t.Error("only one token should have refilled")
	}
}

func TestResetAndSweep(t *testing.T) {
	l, now := newTestLimiter(1, time.Minute)
	defer l.Close()

	l.Allow("a")
	l.Reset("a")
	if !l.Allow("a") {
		t.Error("reset key should start with a full bucket")
	}

	*now = now.Add(3 * time.Minute)
	l.sweep()
	if len(l.entries) != 0 {
		t.Errorf("entries after sweep = %d, want 0", len(l.entries))
	}
}

func TestRetryAfter(t *testing.T) {
	l := New(60, time.Minute)
	defer l.Close()
	if got := l.RetryAfter(); got != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", got)
	}
	l.Close()
}
