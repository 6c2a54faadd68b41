// Package cache implements the reference in-memory LRU-with-TTL backend
// adapter: one of the three concrete stores the placement core is designed
// to sit on top of (the other two are vector and artifact). It is
// interchangeable with a real Redis/Memcached deployment; the ring and
// router never know the difference.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"ringkeeper/internal/filter"
	"ringkeeper/pkg/placement"
)

// Options carries the cache-specific Put knob: TTL. A zero TTL means the
// entry never expires.
type Options struct {
	TTL time.Duration
}

type item struct {
	key       string
	value     []byte
	expiresAt time.Time
	elem      *list.Element
}

func (it *item) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// Stats mirrors the teacher's BasicStoreStats shape: simple running counters
// protected by the store's own mutex, exposed for operational visibility.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Node is a single LRU-with-TTL store, one per physical cache node attached
// to a placement.Router[[]byte].
type Node struct {
	name string

	mu     sync.Mutex
	items  map[string]*item
	order  *list.List // front = most recently used
	pool   *memoryPool
	stats  Stats
	filter *filter.CuckooFilter // negative-lookup fast path; nil-safe
}

// NewNode creates a cache node named name with the given byte budget. It
// builds a cuckoo filter sized off maxMemory so Get on a key this node has
// never held can skip the map and LRU-list entirely.
func NewNode(name string, maxMemory int64) *Node {
	expected := maxMemory / 256
	if expected < 1024 {
		expected = 1024
	}
	cf, _ := filter.NewCuckooFilter(&filter.FilterConfig{
		Name:                name,
		ExpectedItems:       uint64(expected),
		FalsePositiveRate:   0.01,
		BucketSize:          4,
		MaxEvictionAttempts: 500,
	})
	return &Node{
		name:   name,
		items:  make(map[string]*item),
		order:  list.New(),
		pool:   newMemoryPool(maxMemory),
		filter: cf,
	}
}

// Name returns the node's identifier (matches the ring/router adapter id).
func (n *Node) Name() string { return n.name }

// Get implements placement.Store[[]byte]. A miss leaves the stored data
// unchanged apart from dropping an entry whose TTL has already passed, and
// bumps the Misses counter; a hit moves the key to the front of the LRU
// order and bumps the Hits counter.
func (n *Node) Get(_ context.Context, key string) ([]byte, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.filter != nil && !n.filter.Contains([]byte(key)) {
		n.stats.Misses++
		return nil, false, nil
	}

	it, ok := n.items[key]
	if !ok {
		n.stats.Misses++
		return nil, false, nil
	}
	if it.expired(time.Now()) {
		n.removeLocked(it)
		n.stats.Misses++
		return nil, false, nil
	}
	n.order.MoveToFront(it.elem)
	n.stats.Hits++

	out := make([]byte, len(it.value))
	copy(out, it.value)
	return out, true, nil
}

// Put implements placement.Store[[]byte]. opts, if non-nil, must be
// *cache.Options.
func (n *Node) Put(_ context.Context, key string, value []byte, opts placement.PutOptions) error {
	var ttl time.Duration
	if o, ok := opts.(*Options); ok && o != nil {
		ttl = o.TTL
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	if existing, ok := n.items[key]; ok {
		n.pool.free(int64(len(existing.value)))
		existing.value = stored
		if ttl > 0 {
			existing.expiresAt = time.Now().Add(ttl)
		} else {
			existing.expiresAt = time.Time{}
		}
		n.order.MoveToFront(existing.elem)
		return n.pool.allocate(int64(len(stored)))
	}

	if err := n.pool.allocate(int64(len(stored))); err != nil {
		n.evictOldestLocked()
		if err := n.pool.allocate(int64(len(stored))); err != nil {
			return err
		}
	}

	it := &item{key: key, value: stored}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	it.elem = n.order.PushFront(key)
	n.items[key] = it
	if n.filter != nil {
		if err := n.filter.Add([]byte(key)); err != nil {
			// A full filter can no longer vouch for every stored key, so
			// Get stops consulting it.
			n.filter = nil
		}
	}
	return nil
}

// Delete removes key, freeing its memory budget.
func (n *Node) Delete(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if it, ok := n.items[key]; ok {
		n.removeLocked(it)
	}
}

func (n *Node) removeLocked(it *item) {
	n.pool.free(int64(len(it.value)))
	n.order.Remove(it.elem)
	delete(n.items, it.key)
	if n.filter != nil {
		n.filter.Delete([]byte(it.key))
	}
}

func (n *Node) evictOldestLocked() {
	back := n.order.Back()
	if back == nil {
		return
	}
	key := back.Value.(string)
	if it, ok := n.items[key]; ok {
		n.removeLocked(it)
		n.stats.Evictions++
	}
}

// Stats returns a snapshot of the node's operational counters.
func (n *Node) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats
}

// MemoryPressure returns current usage as a fraction of the node's budget.
func (n *Node) MemoryPressure() float64 {
	return n.pool.pressure()
}
