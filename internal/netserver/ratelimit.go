package netserver

import (
	"sync"

	"golang.org/x/time/rate"
)

// messageRate/messageBurst implement spec.md §4.10's "sliding-window
// default 30 msg/sec per connection" as a token bucket — rate.Limiter
// is exactly the token-bucket primitive original_source/net/
// rate_limiter.py hand-rolls (TokenBucket.consume), so this reimplements
// it over golang.org/x/time/rate instead, per the "never stdlib-only
// where the ecosystem has a library" rule.
const (
	messageRate  = 30 // per second
	messageBurst = 30

	// actionRate/actionBurst throttle game_action frames specifically
	// (original_source/net/rate_limiter.py's TokenBucket docstring:
	// "互补" with the sliding-window connection limiter — the window
	// caps raw frame throughput, this caps how fast a seat can take
	// game actions even if it's otherwise within the frame budget).
	actionRate  = 5
	actionBurst = 10
)

// connRateLimiter tracks one golang.org/x/time/rate.Limiter per
// connection id, mirroring original_source/net/rate_limiter.py's
// ConnectionRateLimiter.
type connRateLimiter struct {
	mu            sync.Mutex
	buckets       map[string]*rate.Limiter
	actionBuckets map[string]*rate.Limiter
}

func newConnRateLimiter() *connRateLimiter {
	return &connRateLimiter{
		buckets:       make(map[string]*rate.Limiter),
		actionBuckets: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether connID may send another frame right now,
// lazily creating its bucket on first use.
func (rl *connRateLimiter) Allow(connID string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[connID]
	if !ok {
		b = rate.NewLimiter(rate.Limit(messageRate), messageBurst)
		rl.buckets[connID] = b
	}
	rl.mu.Unlock()
	return b.Allow()
}

// AllowAction is the second, stricter bucket applied only to game_action
// frames, independent of the connection-wide frame budget above — a seat
// that's otherwise within its message quota can still be capped on how
// fast it takes game actions.
func (rl *connRateLimiter) AllowAction(connID string) bool {
	rl.mu.Lock()
	b, ok := rl.actionBuckets[connID]
	if !ok {
		b = rate.NewLimiter(rate.Limit(actionRate), actionBurst)
		rl.actionBuckets[connID] = b
	}
	rl.mu.Unlock()
	return b.Allow()
}

// Remove drops connID's buckets, called when the connection closes.
func (rl *connRateLimiter) Remove(connID string) {
	rl.mu.Lock()
	delete(rl.buckets, connID)
	delete(rl.actionBuckets, connID)
	rl.mu.Unlock()
}
