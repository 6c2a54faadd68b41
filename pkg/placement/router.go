package placement

import (
	"sync"

	"ringkeeper/pkg/ring"
)

// Router owns a reference to a ring and the adapters attached to it. A
// single Replication count and Multiprobe width are fixed at construction.
type Router[V any] struct {
	mu sync.RWMutex

	ring        *ring.Ring
	adapters    map[string]Store[V]
	Replication int
	Multiprobe  int
}

// NewRouter builds a Router over an existing ring. replication and
// multiprobe must be >= 1.
func NewRouter[V any](r *ring.Ring, replication, multiprobe int) *Router[V] {
	if replication < 1 {
		replication = 1
	}
	if multiprobe < 1 {
		multiprobe = 1
	}
	return &Router[V]{
		ring:        r,
		adapters:    make(map[string]Store[V]),
		Replication: replication,
		Multiprobe:  multiprobe,
	}
}

// Ring returns the router's live ring, for callers that need to mutate or
// snapshot it directly (e.g. before a rebalance).
func (rt *Router[V]) Ring() *ring.Ring {
	return rt.ring
}

// Attach registers adapter under id and adds id to the ring with weight.
func (rt *Router[V]) Attach(id string, adapter Store[V], weight int) error {
	rt.mu.Lock()
	prev, hadPrev := rt.adapters[id]
	rt.adapters[id] = adapter
	rt.mu.Unlock()

	if err := rt.ring.AddNode(id, weight, ""); err != nil {
		rt.mu.Lock()
		if hadPrev {
			rt.adapters[id] = prev
		} else {
			delete(rt.adapters, id)
		}
		rt.mu.Unlock()
		return err
	}
	return nil
}

// Detach removes id's adapter and drops it from the ring.
func (rt *Router[V]) Detach(id string) {
	rt.ring.RemoveNode(id)
	rt.mu.Lock()
	delete(rt.adapters, id)
	rt.mu.Unlock()
}

// Placement returns the ordered adapters owning key under the router's live
// ring.
func (rt *Router[V]) Placement(key string) []Store[V] {
	return rt.placementOn(key, rt.ring)
}

// PlacementWithRing returns the ordered adapters owning key under a
// different ring snapshot, while the router's adapter map (which is
// independent of ring topology) stays the same. Rebalancers use this to
// consult the pre-change topology while the router points at the
// post-change one.
func (rt *Router[V]) PlacementWithRing(key string, other *ring.Ring) []Store[V] {
	return rt.placementOn(key, other)
}

func (rt *Router[V]) placementOn(key string, r *ring.Ring) []Store[V] {
	ids := r.GetNodesForKey(key, rt.Replication, rt.Multiprobe)

	rt.mu.RLock()
	defer rt.mu.RUnlock()

	out := make([]Store[V], 0, len(ids))
	for _, id := range ids {
		if a, ok := rt.adapters[id]; ok {
			out = append(out, a)
		}
		// An id returned by the ring but absent from the adapter map means
		// ring and map have drifted out of sync; this is defensive and
		// should not happen in normal operation, so it is dropped silently.
	}
	return out
}

// AdapterIDs returns the ids of every adapter currently attached.
func (rt *Router[V]) AdapterIDs() []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]string, 0, len(rt.adapters))
	for id := range rt.adapters {
		out = append(out, id)
	}
	return out
}
