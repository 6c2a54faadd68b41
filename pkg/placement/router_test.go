package placement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ringkeeper/pkg/ring"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: make(map[string]string)} }

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Put(_ context.Context, key string, value string, _ PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestRouterAttachDetach(t *testing.T) {
	r := ring.New(ring.Config{VirtualNodesPerWeight: 64, Seed: 1})
	router := NewRouter[string](r, 2, 2)

	if err := router.Attach("a", newMemStore(), 1); err != nil {
		t.Fatal(err)
	}
	if err := router.Attach("b", newMemStore(), 1); err != nil {
		t.Fatal(err)
	}
	if len(router.AdapterIDs()) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(router.AdapterIDs()))
	}

	router.Detach("a")
	if len(router.AdapterIDs()) != 1 {
		t.Fatalf("expected 1 adapter after detach, got %d", len(router.AdapterIDs()))
	}
	if r.Size() != 1 {
		t.Fatalf("expected ring to lose the detached node, got size %d", r.Size())
	}
}

func TestRouterAttachDuplicateRollsBackAdapter(t *testing.T) {
	r := ring.New(ring.Config{VirtualNodesPerWeight: 64, Seed: 1})
	router := NewRouter[string](r, 1, 1)
	router.Attach("a", newMemStore(), 1)

	err := router.Attach("a", newMemStore(), 1)
	if !errors.Is(err, ring.ErrDuplicateNode) {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
	if len(router.AdapterIDs()) != 1 {
		t.Fatalf("duplicate attach should not leave a second adapter registered, got %d", len(router.AdapterIDs()))
	}
}

func TestPlacementDropsAdaptersMissingFromMap(t *testing.T) {
	r := ring.New(ring.Config{VirtualNodesPerWeight: 64, Seed: 1})
	router := NewRouter[string](r, 3, 2)
	router.Attach("a", newMemStore(), 1)
	router.Attach("b", newMemStore(), 1)

	// Simulate ring/map drift: remove "a" from the adapter map directly
	// without detaching it from the ring.
	router.mu.Lock()
	delete(router.adapters, "a")
	router.mu.Unlock()

	got := router.Placement("some-key")
	for _, adapter := range got {
		if adapter == nil {
			t.Fatal("placement should never return a nil adapter")
		}
	}
}

func TestPlacementWithRingUsesGivenSnapshot(t *testing.T) {
	r := ring.New(ring.Config{VirtualNodesPerWeight: 64, Seed: 5})
	router := NewRouter[string](r, 1, 1)
	router.Attach("a", newMemStore(), 1)

	before := r.Clone()
	router.Attach("b", newMemStore(), 1)

	// Against `before`, only "a" ever existed, so placement-with-ring must
	// never surface "b"'s adapter even though the router's live ring now has it.
	for i := 0; i < 20; i++ {
		got := router.PlacementWithRing(string(rune('k'+i)), before)
		if len(got) != 1 {
			t.Fatalf("expected exactly 1 adapter against single-node snapshot, got %d", len(got))
		}
	}
}
