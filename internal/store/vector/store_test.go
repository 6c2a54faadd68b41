package vector

import (
	"context"
	"testing"
)

func TestShardUpsertAndGet(t *testing.T) {
	s := NewShard("shard-1")
	ctx := context.Background()

	if err := s.Upsert(ctx, "e1", []float32{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(ctx, "e1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(v) != 3 || v[0] != 1 {
		t.Fatalf("unexpected vector %v", v)
	}
}

func TestShardSearchRanksBySimilarity(t *testing.T) {
	s := NewShard("shard-1")
	ctx := context.Background()
	s.Upsert(ctx, "same", []float32{1, 0, 0})
	s.Upsert(ctx, "orthogonal", []float32{0, 1, 0})
	s.Upsert(ctx, "opposite", []float32{-1, 0, 0})

	matches := s.Search(ctx, []float32{1, 0, 0}, 3)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].Key != "same" {
		t.Fatalf("expected 'same' to rank first, got %q (%v)", matches[0].Key, matches)
	}
	if matches[len(matches)-1].Key != "opposite" {
		t.Fatalf("expected 'opposite' to rank last, got %q (%v)", matches[len(matches)-1].Key, matches)
	}
}
