// Package ratelimit provides per-principal admission control for the
// externally rate-limited AI call. Buckets refill in whole intervals
// (capacity tokens every interval), not continuously, matching the
// upstream provider's window.
package ratelimit

import (
	"sync"
	"time"
)

// AnonymousKey is charged when no principal can be resolved from the
// call context.
const AnonymousKey = "anonymous"

const (
	// DefaultCapacity is the number of requests per interval per user.
	DefaultCapacity = 10
	// DefaultInterval is the refill window.
	DefaultInterval = time.Minute
)

type bucket struct {
	mu     sync.Mutex
	tokens int
	refill time.Time // start of the current interval
}

// Guard owns the bucket registry. It is constructed once and injected;
// buckets are created lazily per key and live for the process
// lifetime. Growth is bounded by the number of distinct users.
type Guard struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	interval time.Duration
	now      func() time.Time
}

// NewGuard creates a guard with the given bucket policy.
func NewGuard(capacity int, interval time.Duration) *Guard {
	return &Guard{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		interval: interval,
		now:      time.Now,
	}
}

// NewDefaultGuard creates a guard with the production policy of 10
// requests per rolling minute per user.
func NewDefaultGuard() *Guard {
	return NewGuard(DefaultCapacity, DefaultInterval)
}

// Admit consumes one token for the key and reports whether the call is
// allowed. A denied call consumes nothing. An empty key is charged to
// the shared anonymous bucket.
func (g *Guard) Admit(key string) bool {
	if key == "" {
		key = AnonymousKey
	}
	b := g.lookupOrCreate(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := g.now()
	if now.Sub(b.refill) >= g.interval {
		b.tokens = g.capacity
		b.refill = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func (g *Guard) lookupOrCreate(key string) *bucket {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.buckets[key]
	if !ok {
		b = &bucket{tokens: g.capacity, refill: g.now()}
		g.buckets[key] = b
	}
	return b
}
