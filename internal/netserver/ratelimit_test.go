package netserver

import "testing"

func TestConnRateLimiterAllowsUpToBurst(t *testing.T) {
	rl := newConnRateLimiter()
	allowed := 0
	for i := 0; i < messageBurst+5; i++ {
		if rl.Allow("conn-1") {
			allowed++
		}
	}
	if allowed != messageBurst {
		t.Fatalf("expected exactly %d frames allowed before the bucket empties, got %d", messageBurst, allowed)
	}
}

func TestConnRateLimiterActionBucketIsIndependentAndStricter(t *testing.T) {
	rl := newConnRateLimiter()
	// Exhaust the generic message bucket; the action bucket must still
	// track its own, smaller budget rather than sharing state.
	for i := 0; i < messageBurst; i++ {
		rl.Allow("conn-1")
	}
	if rl.Allow("conn-1") {
		t.Fatal("expected the message bucket to be empty")
	}

	allowedActions := 0
	for i := 0; i < actionBurst+5; i++ {
		if rl.AllowAction("conn-1") {
			allowedActions++
		}
	}
	if allowedActions != actionBurst {
		t.Fatalf("expected exactly %d actions allowed, got %d", actionBurst, allowedActions)
	}
}

func TestConnRateLimiterBucketsArePerConnection(t *testing.T) {
	rl := newConnRateLimiter()
	for i := 0; i < messageBurst; i++ {
		rl.Allow("conn-a")
	}
	if rl.Allow("conn-a") {
		t.Fatal("expected conn-a's bucket to be exhausted")
	}
	if !rl.Allow("conn-b") {
		t.Fatal("expected conn-b to have its own untouched bucket")
	}
}

func TestConnRateLimiterRemoveDropsBuckets(t *testing.T) {
	rl := newConnRateLimiter()
	for i := 0; i < messageBurst; i++ {
		rl.Allow("conn-1")
	}
	rl.Remove("conn-1")
	if !rl.Allow("conn-1") {
		t.Fatal("expected Remove to reset the connection's bucket on next use")
	}
}
