package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testClock lets tests move time forward without sleeping.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestGuard(capacity int, interval time.Duration) (*Guard, *testClock) {
	clock := &testClock{now: time.Unix(1700000000, 0)}
	g := NewGuard(capacity, interval)
	g.now = clock.Now
	return g, clock
}

func TestAdmit_ExhaustsAndRefills(t *testing.T) {
	g, clock := newTestGuard(10, time.Minute)

	for i := 0; i < 10; i++ {
		if !g.Admit("alice") {
			t.Fatalf("Admit #%d = false, want true", i+1)
		}
	}
	if g.Admit("alice") {
		t.Fatal("Admit #11 = true, want false")
	}
	// Deny must not consume; still denied immediately after.
	if g.Admit("alice") {
		t.Fatal("Admit after deny = true, want false")
	}

	clock.Advance(time.Minute)
	for i := 0; i < 10; i++ {
		if !g.Admit("alice") {
			t.Fatalf("Admit #%d after refill = false, want true", i+1)
		}
	}
	if g.Admit("alice") {
		t.Fatal("Admit #11 after refill = true, want false")
	}
}

func TestAdmit_NoEarlyRefill(t *testing.T) {
	g, clock := newTestGuard(2, time.Minute)
	g.Admit("bob")
	g.Admit("bob")
	clock.Advance(59 * time.Second)
	if g.Admit("bob") {
		t.Fatal("Admit inside interval = true, want false (interval refill, not continuous)")
	}
}

func TestAdmit_KeysIsolated(t *testing.T) {
	g, _ := newTestGuard(1, time.Minute)
	if !g.Admit("alice") {
		t.Fatal("alice first Admit = false, want true")
	}
	if !g.Admit("bob") {
		t.Fatal("bob first Admit = false, want true")
	}
	if g.Admit("alice") {
		t.Fatal("alice second Admit = true, want false")
	}
}

func TestAdmit_AnonymousFallback(t *testing.T) {
	g, _ := newTestGuard(1, time.Minute)
	if !g.Admit("") {
		t.Fatal(`Admit("") = false, want true`)
	}
	if g.Admit(AnonymousKey) {
		t.Fatal("empty key and anonymous key should share a bucket")
	}
}

func TestAdmit_ConcurrentNoOveradmission(t *testing.T) {
	g, _ := newTestGuard(50, time.Minute)

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Admit("shared") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 50 {
		t.Errorf("admitted = %d, want exactly 50", got)
	}
}
