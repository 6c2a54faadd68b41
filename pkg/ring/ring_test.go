package ring

import (
	"fmt"
	"math"
	"testing"
)

func newTestRing(seed uint64, vnpw int) *Ring {
	return New(Config{VirtualNodesPerWeight: vnpw, Seed: seed})
}

func TestAddNodeDuplicate(t *testing.T) {
	r := newTestRing(42, 128)
	if err := r.AddNode("node-A", 1, ""); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := r.AddNode("node-A", 1, ""); err == nil {
		t.Fatal("expected ErrDuplicateNode")
	} else if err != ErrDuplicateNode {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
	if r.Size() != 1 {
		t.Fatalf("duplicate insert should leave ring untouched, got size %d", r.Size())
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	r := newTestRing(42, 128)
	r.AddNode("node-A", 1, "")
	r.RemoveNode("does-not-exist")
	if r.Size() != 1 {
		t.Fatalf("expected size 1, got %d", r.Size())
	}
}

// S1: single node absorbs all keys.
func TestSingleNodeAbsorbsAll(t *testing.T) {
	r := newTestRing(42, 128)
	if err := r.AddNode("node-A", 1, ""); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"user-1", "embedding-123", "artifact:lora:en:1"} {
		if got := r.GetNode(k); got != "node-A" {
			t.Errorf("GetNode(%q) = %q, want node-A", k, got)
		}
	}
}

// S2: three nodes, keys spread across at least two of them.
func TestSpreadAcrossNodes(t *testing.T) {
	r := newTestRing(42, 128)
	for _, id := range []string{"node-A", "node-B", "node-C"} {
		if err := r.AddNode(id, 1, ""); err != nil {
			t.Fatal(err)
		}
	}
	seen := map[string]bool{}
	for i := 1; i <= 6; i++ {
		seen[r.GetNode(fmt.Sprintf("k%d", i))] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected keys spread across >= 2 nodes, got %v", seen)
	}
	for id := range seen {
		if id != "node-A" && id != "node-B" && id != "node-C" {
			t.Fatalf("unexpected owner %q", id)
		}
	}
}

// S3: elasticity bound when adding a fourth node.
func TestElasticityBound(t *testing.T) {
	r := newTestRing(42, 128)
	for _, id := range []string{"node-A", "node-B", "node-C"} {
		r.AddNode(id, 1, "")
	}

	keys := make([]string, 1000)
	before := make(map[string]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		before[keys[i]] = r.GetNode(keys[i])
	}

	if err := r.AddNode("node-D", 1, ""); err != nil {
		t.Fatal(err)
	}

	moved := 0
	for _, k := range keys {
		if r.GetNode(k) != before[k] {
			moved++
		}
	}
	frac := float64(moved) / float64(len(keys))
	if frac < 0.15 || frac > 0.35 {
		t.Fatalf("moved fraction %.3f out of [0.15, 0.35]", frac)
	}
}

// S4: replica selection returns exactly `replicas` distinct ids.
func TestReplicaDistinctness(t *testing.T) {
	r := newTestRing(42, 128)
	for _, id := range []string{"node-A", "node-B", "node-C", "node-D"} {
		r.AddNode(id, 1, "")
	}
	got := r.GetNodesForKey("embedding-999", 2, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 replicas, got %d (%v)", len(got), got)
	}
	if got[0] == got[1] {
		t.Fatalf("replicas not distinct: %v", got)
	}
	valid := map[string]bool{"node-A": true, "node-B": true, "node-C": true, "node-D": true}
	for _, id := range got {
		if !valid[id] {
			t.Fatalf("unexpected replica owner %q", id)
		}
	}
}

func TestReplicaDistinctnessExhaustsRing(t *testing.T) {
	r := newTestRing(7, 64)
	for _, id := range []string{"a", "b", "c"} {
		r.AddNode(id, 1, "")
	}
	got := r.GetNodesForKey("some-key", 5, 3)
	if len(got) != 3 {
		t.Fatalf("expected replicas capped at ring size 3, got %d (%v)", len(got), got)
	}
}

// S6: removing a node redistributes its keys among survivors and it never
// appears in subsequent lookups.
func TestRemoveRedistributes(t *testing.T) {
	r := newTestRing(42, 128)
	for _, id := range []string{"node-A", "node-B", "node-C"} {
		r.AddNode(id, 1, "")
	}

	keys := make([]string, 200)
	ownedByB := []string{}
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i)
		if r.GetNode(keys[i]) == "node-B" {
			ownedByB = append(ownedByB, keys[i])
		}
	}
	if len(ownedByB) == 0 {
		t.Fatal("expected node-B to own at least one key before removal")
	}

	r.RemoveNode("node-B")

	for _, k := range keys {
		if r.GetNode(k) == "node-B" {
			t.Fatalf("node-B still owns %q after removal", k)
		}
	}
	for _, k := range ownedByB {
		owner := r.GetNode(k)
		if owner != "node-A" && owner != "node-C" {
			t.Fatalf("key %q redistributed to unexpected owner %q", k, owner)
		}
	}
}

// Property 1: determinism across independent ring reconstructions.
func TestDeterminism(t *testing.T) {
	build := func() *Ring {
		r := newTestRing(42, 128)
		for _, id := range []string{"node-A", "node-B", "node-C"} {
			r.AddNode(id, 1, "")
		}
		return r
	}
	r1, r2 := build(), build()
	for i := 0; i < 100; i++ {
		k := fmt.Sprintf("key-%d", i)
		if r1.GetNode(k) != r2.GetNode(k) {
			t.Fatalf("non-deterministic owner for %q", k)
		}
	}
}

// Property 5: a clone is stable against subsequent mutation of the original.
func TestCloneStability(t *testing.T) {
	r := newTestRing(42, 128)
	for _, id := range []string{"node-A", "node-B", "node-C"} {
		r.AddNode(id, 1, "")
	}

	keys := make([]string, 50)
	snapshot := make(map[string]string, 50)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		snapshot[keys[i]] = r.GetNode(keys[i])
	}

	clone := r.Clone()
	r.AddNode("node-D", 1, "")
	r.RemoveNode("node-A")

	for _, k := range keys {
		if clone.GetNode(k) != snapshot[k] {
			t.Fatalf("clone drifted for %q: got %q want %q", k, clone.GetNode(k), snapshot[k])
		}
	}
	if clone.Size() != 3 {
		t.Fatalf("clone size changed: %d", clone.Size())
	}
}

// Weighted elasticity: a weight-2 node should own roughly twice the share of
// a weight-1 node.
func TestWeightedDistributionRoughlyProportional(t *testing.T) {
	r := newTestRing(99, 256)
	r.AddNode("light", 1, "")
	r.AddNode("heavy", 2, "")

	counts := map[string]int{}
	const n = 3000
	for i := 0; i < n; i++ {
		counts[r.GetNode(fmt.Sprintf("key-%d", i))]++
	}
	ratio := float64(counts["heavy"]) / float64(counts["light"])
	if math.Abs(ratio-2.0) > 0.6 {
		t.Fatalf("expected heavy:light ratio near 2.0, got %.2f (%v)", ratio, counts)
	}
}
