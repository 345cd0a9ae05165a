package cache

import (
	"testing"
	"time"
)

func TestTTLStoreGetSet(t *testing.T) {
	store := NewTTLStore(time.Minute)

	if _, ok := store.Get("missing"); ok {
		t.Fatal("Get on an empty store must miss")
	}

	store.Set("k", 42)
	v, ok := store.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("Get = (%v, %v), want (42, true)", v, ok)
	}
}

func TestTTLStoreExpiresByClock(t *testing.T) {
	store := NewTTLStore(20 * time.Millisecond)
	store.Set("k", "v")

	if _, ok := store.Get("k"); !ok {
		t.Fatal("fresh entry must be served")
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := store.Get("k"); ok {
		t.Fatal("entry past its TTL must miss")
	}
}

func TestTTLStoreClearIsIdempotent(t *testing.T) {
	store := NewTTLStore(time.Minute)
	store.Set("a", 1)
	store.Set("b", 2)

	store.Clear()
	if _, ok := store.Get("a"); ok {
		t.Fatal("Clear must drop all entries")
	}

	// Clearing an already-empty store is a no-op.
	store.Clear()
	store.Set("a", 3)
	if v, ok := store.Get("a"); !ok || v.(int) != 3 {
		t.Fatalf("Get after re-set = (%v, %v), want (3, true)", v, ok)
	}
}

func TestTTLStoreStats(t *testing.T) {
	store := NewTTLStore(time.Minute)
	store.Set("a", 1)

	store.Get("a")       // hit
	store.Get("missing") // miss
	store.Get("a")       // hit

	stats := store.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits and 1 miss", stats)
	}
	if stats.Entries != 1 {
		t.Errorf("entries = %d, want 1", stats.Entries)
	}
	if stats.TTL != time.Minute {
		t.Errorf("TTL = %v, want 1m", stats.TTL)
	}
}
