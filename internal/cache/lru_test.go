package cache

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestLRUCacheSlidingTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute, WithClock[string](clock.Now))

	c.Set("a", "1")
	clock.Advance(50 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit before ttl")
	}
	// The hit above restarted the ttl.
	clock.Advance(50 * time.Second)
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("expected sliding hit, got %q %v", v, ok)
	}
	clock.Advance(61 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after idle ttl")
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d, want 0", c.Size())
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewLRUCache[int](2, time.Hour, WithEvictHook(func(key string, _ int) {
		evicted = append(evicted, key)
	}))

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
}

func TestLRUCacheDeleteSkipsHook(t *testing.T) {
	called := false
	c := NewLRUCache[int](2, time.Hour, WithEvictHook(func(string, int) { called = true }))
	c.Set("a", 1)
	c.Delete("a")
	if called {
		t.Error("Delete must not call the evict hook")
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0", c.Size())
	}
}

func TestManagerSweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute, WithClock[int](clock.Now))
	c.Set("a", 1)
	c.Set("b", 2)
	clock.Advance(2 * time.Minute)
	c.Set("c", 3)

	m := NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.Register("sessions", c)

	removed := m.Sweep()
	if removed["sessions"] != 2 {
		t.Errorf("removed = %d, want 2", removed["sessions"])
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestManagerStopIsIdempotent(t *testing.T) {
	m := NewManager(nil)
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()

	unstarted := NewManager(nil)
	unstarted.Stop()
}
