package ratelimiter

import (
	"testing"
	"time"
)

func TestAllowUnderLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, retry := rl.Allow("1.2.3.4"); ok {
		t.Fatal("fourth request should be rejected")
	} else if retry != time.Minute {
		t.Fatalf("expected retry-after of one window, got %v", retry)
	}
}

func TestAllowTracksClientsSeparately(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Minute)

	if ok, _ := rl.Allow("1.1.1.1"); !ok {
		t.Fatal("first client should be allowed")
	}
	if ok, _ := rl.Allow("2.2.2.2"); !ok {
		t.Fatal("second client should not share the first one's count")
	}
	if ok, _ := rl.Allow("1.1.1.1"); ok {
		t.Fatal("first client should now be over the limit")
	}
}
