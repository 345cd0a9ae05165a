package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// TTLStore is an in-process TTL cache. Expiry is checked by clock comparison
// on read, never by waiting on a timer, so a stopped clock test can exercise
// it deterministically. The store is advisory: correctness of the wrapped
// computation never depends on it.
type TTLStore struct {
	c      *gocache.Cache
	ttl    time.Duration
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats is a snapshot of cache activity for introspection endpoints.
type Stats struct {
	Entries int           `json:"entries"`
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	TTL     time.Duration `json:"ttl"`
}

// NewTTLStore creates a store whose entries are valid for ttl after insertion.
func NewTTLStore(ttl time.Duration) *TTLStore {
	// Cleanup sweeps expired entries to bound memory; reads never rely on it.
	return &TTLStore{
		c:   gocache.New(ttl, ttl/2),
		ttl: ttl,
	}
}

// Get returns the cached value for key if it was inserted within the TTL.
func (s *TTLStore) Get(key string) (interface{}, bool) {
	v, ok := s.c.Get(key)
	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return v, ok
}

// Set inserts a value under key with the store's TTL. Empty results are
// cached like any other; there is no negative-caching special case.
func (s *TTLStore) Set(key string, value interface{}) {
	s.c.Set(key, value, gocache.DefaultExpiration)
}

// Clear empties the entire store. Idempotent and safe to call concurrently
// with in-flight reads; a reader that started before Clear may still return
// the value it already loaded.
func (s *TTLStore) Clear() {
	s.c.Flush()
}

// Stats returns a snapshot of the store's activity.
func (s *TTLStore) Stats() Stats {
	return Stats{
		Entries: s.c.ItemCount(),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		TTL:     s.ttl,
	}
}
