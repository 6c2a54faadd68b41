package artifact

import (
	"context"
	"path/filepath"
	"testing"

	"ringkeeper/pkg/placement"
	"ringkeeper/pkg/ring"
)

func TestHostPutGetRoundTrip(t *testing.T) {
	h := NewHost("host-1", t.TempDir())
	ctx := context.Background()

	if err := h.Put(ctx, "artifact:lora:en:1", []byte("blob-data"), nil); err != nil {
		t.Fatal(err)
	}
	v, ok, err := h.Get(ctx, "artifact:lora:en:1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(v) != "blob-data" {
		t.Fatalf("got %q, want blob-data", v)
	}
}

func TestHostGetMissIsNotError(t *testing.T) {
	h := NewHost("host-1", t.TempDir())
	_, ok, err := h.Get(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestHostSanitizesColons(t *testing.T) {
	dir := t.TempDir()
	h := NewHost("host-1", dir)
	h.Put(context.Background(), "a:b:c", []byte("x"), nil)

	want := filepath.Join(dir, "a_b_c")
	if got := h.path("a:b:c"); got != want {
		t.Fatalf("path(%q) = %q, want %q", "a:b:c", got, want)
	}
}

func TestDistributorFansWritesToAllReplicas(t *testing.T) {
	r := ring.New(ring.Config{VirtualNodesPerWeight: 128, Seed: 3})
	router := placement.NewRouter[[]byte](r, 2, 2)

	hosts := map[string]*Host{}
	for _, id := range []string{"host-a", "host-b", "host-c"} {
		h := NewHost(id, t.TempDir())
		hosts[id] = h
		if err := router.Attach(id, h, 1); err != nil {
			t.Fatal(err)
		}
	}

	dist := NewDistributor(router)
	ctx := context.Background()
	if err := dist.Distribute(ctx, "blob-1", []byte("payload")); err != nil {
		t.Fatal(err)
	}

	hits := 0
	for _, h := range hosts {
		if _, ok, _ := h.Get(ctx, "blob-1"); ok {
			hits++
		}
	}
	if hits != router.Replication {
		t.Fatalf("expected blob on exactly %d hosts, found %d", router.Replication, hits)
	}
}
