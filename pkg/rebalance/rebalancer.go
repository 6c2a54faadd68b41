package rebalance

import (
	"context"

	"ringkeeper/pkg/placement"
	"ringkeeper/pkg/ring"
)

// Fallback is an implementer-defined last-resort read, run when no adapter
// in the pre-change placement has a copy of a key. The reference cache
// rebalancer sets this to a function that re-tries the router's live
// (post-change) placement; vector and artifact rebalancers leave it nil.
type Fallback[V any] func(ctx context.Context, key string) (V, bool, error)

// WriteOptions builds the adapter-specific PutOptions for a migrated value
// (e.g. restoring a TTL). A nil WriteOptions means "no options".
type WriteOptions[V any] func(value V) placement.PutOptions

// Executor drives Plan execution for one backend kind: read from the
// pre-change placement, optionally fall back, write to the post-change
// placement. It holds no ring lock across adapter calls — each call to
// PlacementWithRing/Placement is self-contained.
type Executor[V any] struct {
	Router   *placement.Router[V]
	Fallback Fallback[V]
	Opts     WriteOptions[V]
}

// Execute walks every key in plan and migrates it. It is not transactional:
// a crash mid-execute leaves keys partially migrated, and re-running planner
// + Execute against the same ring snapshots converges because the planner is
// a pure function of (keys, before, after). Adapter errors are propagated
// immediately and not retried.
func (e *Executor[V]) Execute(ctx context.Context, plan Plan, before *ring.Ring) error {
	for key := range plan {
		value, ok, err := e.readOld(ctx, key, before)
		if err != nil {
			return err
		}
		if !ok {
			// MissingValue: absent on every old replica (and fallback, if
			// any); nothing to migrate.
			continue
		}
		if err := e.writeNew(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor[V]) readOld(ctx context.Context, key string, before *ring.Ring) (V, bool, error) {
	var zero V
	for _, adapter := range e.Router.PlacementWithRing(key, before) {
		v, ok, err := adapter.Get(ctx, key)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	if e.Fallback != nil {
		return e.Fallback(ctx, key)
	}
	return zero, false, nil
}

func (e *Executor[V]) writeNew(ctx context.Context, key string, value V) error {
	var opts placement.PutOptions
	if e.Opts != nil {
		opts = e.Opts(value)
	}
	for _, adapter := range e.Router.Placement(key) {
		if err := adapter.Put(ctx, key, value, opts); err != nil {
			return err
		}
	}
	return nil
}
