// Package ring implements a weighted virtual-node consistent-hash ring:
// O(log N) primary-owner lookup, multi-replica selection with multiprobe
// dispersion, and a clone operation that produces an independent snapshot
// for before/after diffing under live mutation.
package ring

import (
	"errors"
	"sort"
	"sync"
)

// ErrDuplicateNode is returned by AddNode when the id is already present.
var ErrDuplicateNode = errors.New("ring: duplicate node")

const (
	// DefaultVirtualNodesPerWeight is used when Config.VirtualNodesPerWeight
	// is left at zero.
	DefaultVirtualNodesPerWeight = 128
)

// Node is an immutable record describing a physical node attached to the
// ring. Zone and Labels are metadata only; placement never consults them.
type Node struct {
	ID     string
	Weight int
	Zone   string
	Labels map[string]string
}

// vnode is one (token, owning node id) entry of the ring.
type vnode struct {
	token  uint64
	nodeID string
}

// Config fixes the parameters that determine token layout for the lifetime
// of a Ring. They never change after construction.
type Config struct {
	// VirtualNodesPerWeight below 1 (including zero) means
	// DefaultVirtualNodesPerWeight.
	VirtualNodesPerWeight int
	// Seed is folded into every hash computed by this ring.
	Seed uint64
	// Hash defaults to XXHash64 when nil.
	Hash HashFunc
}

func (c Config) normalized() Config {
	if c.VirtualNodesPerWeight < 1 {
		c.VirtualNodesPerWeight = DefaultVirtualNodesPerWeight
	}
	if c.Hash == nil {
		c.Hash = XXHash64
	}
	return c
}

// Ring is the authoritative consistent-hash placement structure. All
// operations take a single ring-wide lock; readers use RLock, writers use
// Lock. No operation performs I/O while holding the lock.
type Ring struct {
	mu sync.RWMutex

	cfg Config

	nodes   map[string]Node
	entries []vnode // sorted by token ascending
	tokens  []uint64 // parallel to entries, kept in lock-step
}

// New returns an empty ring configured with cfg.
func New(cfg Config) *Ring {
	cfg = cfg.normalized()
	return &Ring{
		cfg:   cfg,
		nodes: make(map[string]Node),
	}
}

func vnCount(cfg Config, weight int) int {
	if weight < 1 {
		weight = 1
	}
	return cfg.VirtualNodesPerWeight * weight
}

// AddNode inserts a node and its virtual nodes into the ring. It fails with
// ErrDuplicateNode if id already exists; in that case the ring is left
// completely unmodified (atomic failure).
func (r *Ring) AddNode(id string, weight int, zone string) error {
	return r.AddNodeWithLabels(id, weight, zone, nil)
}

// AddNodeWithLabels is AddNode with an optional label map attached to the node.
func (r *Ring) AddNodeWithLabels(id string, weight int, zone string, labels map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[id]; exists {
		return ErrDuplicateNode
	}
	if weight < 1 {
		weight = 1
	}

	n := vnCount(r.cfg, weight)
	newEntries := make([]vnode, n)
	for i := 0; i < n; i++ {
		newEntries[i] = vnode{
			token:  hashVNode(r.cfg.Hash, id, i, r.cfg.Seed),
			nodeID: id,
		}
	}
	// Stable sort preserves replica-index order among the node's own
	// colliding tokens; ties against the existing ring are broken by
	// mergeInsert below (new entry before equal-valued existing entry).
	sort.SliceStable(newEntries, func(i, j int) bool {
		return newEntries[i].token < newEntries[j].token
	})

	r.entries = mergeInsert(r.entries, newEntries)
	r.tokens = tokensOf(r.entries)

	node := Node{ID: id, Weight: weight, Zone: zone}
	if len(labels) > 0 {
		node.Labels = make(map[string]string, len(labels))
		for k, v := range labels {
			node.Labels[k] = v
		}
	}
	r.nodes[id] = node

	return nil
}

// mergeInsert merges sorted newEntries into sorted existing, placing a new
// entry strictly before any existing entry of equal token value (bisect-left
// tie-break, applied uniformly with lookup).
func mergeInsert(existing, newEntries []vnode) []vnode {
	merged := make([]vnode, 0, len(existing)+len(newEntries))
	i, j := 0, 0
	for i < len(existing) && j < len(newEntries) {
		if newEntries[j].token <= existing[i].token {
			merged = append(merged, newEntries[j])
			j++
		} else {
			merged = append(merged, existing[i])
			i++
		}
	}
	merged = append(merged, existing[i:]...)
	merged = append(merged, newEntries[j:]...)
	return merged
}

func tokensOf(entries []vnode) []uint64 {
	toks := make([]uint64, len(entries))
	for i, e := range entries {
		toks[i] = e.token
	}
	return toks
}

// RemoveNode drops id and all of its virtual nodes. Removing an unknown id
// is a silent no-op.
func (r *Ring) RemoveNode(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[id]; !exists {
		return
	}
	delete(r.nodes, id)

	filtered := make([]vnode, 0, len(r.entries))
	for _, e := range r.entries {
		if e.nodeID != id {
			filtered = append(filtered, e)
		}
	}
	r.entries = filtered
	r.tokens = tokensOf(r.entries)
}

// GetNode returns the primary owner of key, or "" if the ring is empty.
func (r *Ring) GetNode(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.entries) == 0 {
		return ""
	}
	tok := hashKey(r.cfg.Hash, key, r.cfg.Seed)
	idx := upperBound(r.tokens, tok)
	return r.entries[idx%len(r.entries)].nodeID
}

// upperBound returns the index of the first token strictly greater than tok,
// or len(tokens) if none exists (the caller wraps modulo ring length).
func upperBound(tokens []uint64, tok uint64) int {
	return sort.Search(len(tokens), func(i int) bool {
		return tokens[i] > tok
	})
}

// GetNodesForKey returns up to `replicas` distinct node ids for key, using
// `multiprobe` independent starting positions on the ring to diversify the
// entry point before walking clockwise. Returns fewer than replicas entries
// if the ring does not contain that many distinct nodes.
func (r *Ring) GetNodesForKey(key string, replicas, multiprobe int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.entries)
	if n == 0 || replicas < 1 {
		return nil
	}
	if multiprobe < 1 {
		multiprobe = 1
	}

	starts := make([]int, multiprobe)
	for p := 0; p < multiprobe; p++ {
		tok := hashProbe(r.cfg.Hash, key, p, r.cfg.Seed)
		starts[p] = upperBound(r.tokens, tok) % n
	}
	sort.Ints(starts)

	seen := make(map[string]bool, replicas)
	out := make([]string, 0, replicas)
	for _, start := range starts {
		for step := 0; step < n && len(out) < replicas; step++ {
			idx := (start + step) % n
			id := r.entries[idx].nodeID
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
		if len(out) >= replicas {
			break
		}
	}
	return out
}

// Nodes returns the ids of every physical node currently in the ring, in no
// particular order.
func (r *Ring) Nodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.nodes))
	for id := range r.nodes {
		out = append(out, id)
	}
	return out
}

// Size returns the number of distinct physical nodes in the ring.
func (r *Ring) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// NodeInfo returns the Node record for id, if present.
func (r *Ring) NodeInfo(id string) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[id]
	return n, ok
}

// Stats summarizes the current ring topology.
type Stats struct {
	NodeCount   int
	VNodeCount  int
	TotalWeight int
}

// Stats returns a point-in-time summary of the ring.
func (r *Ring) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{NodeCount: len(r.nodes), VNodeCount: len(r.entries)}
	for _, n := range r.nodes {
		s.TotalWeight += n.Weight
	}
	return s
}

// DumpTokens returns every (token, nodeID) pair in ring order, for
// introspection and tests. The returned slice is a copy.
func (r *Ring) DumpTokens() []struct {
	Token  uint64
	NodeID string
} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]struct {
		Token  uint64
		NodeID string
	}, len(r.entries))
	for i, e := range r.entries {
		out[i].Token = e.token
		out[i].NodeID = e.nodeID
	}
	return out
}

// Clone returns a fully independent deep copy of the ring: a fresh lock and
// no shared backing arrays with the original. Subsequent mutation of either
// ring never affects the other.
func (r *Ring) Clone() *Ring {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := &Ring{
		cfg:     r.cfg,
		nodes:   make(map[string]Node, len(r.nodes)),
		entries: make([]vnode, len(r.entries)),
		tokens:  make([]uint64, len(r.tokens)),
	}
	for id, n := range r.nodes {
		nc := n
		if n.Labels != nil {
			nc.Labels = make(map[string]string, len(n.Labels))
			for k, v := range n.Labels {
				nc.Labels[k] = v
			}
		}
		clone.nodes[id] = nc
	}
	copy(clone.entries, r.entries)
	copy(clone.tokens, r.tokens)
	return clone
}
