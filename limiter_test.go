package editshell

import (
	"testing"
	"time"
)

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewLoginLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.10"

	for i := 0; i < 2; i++ {
		if !limiter.Check(ip) {
			t.Fatalf("failure %d: expected attempt to be allowed", i+1)
		}
		limiter.Record(ip)
	}
	if limiter.Check(ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewLoginLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.20"

	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected attempt after a failure to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !limiter.Check(ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestLoginLimiterCheckDoesNotRecord(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	defer limiter.Stop()
	ip := "203.0.113.30"

	for i := 0; i < 3; i++ {
		if !limiter.Check(ip) {
			t.Fatalf("check %d: expected allowed without recorded failures", i)
		}
	}
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected blocked after a recorded failure")
	}
	if !limiter.Check("203.0.113.31") {
		t.Fatalf("expected other ip to be unaffected")
	}
}

func TestLoginLimiterStopIsIdempotent(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Millisecond)
	limiter.Stop()
	limiter.Stop()
}
