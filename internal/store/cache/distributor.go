package cache

import (
	"context"
	"time"

	"ringkeeper/pkg/placement"
)

// DistributedCache is the cache router's domain-facing convenience surface,
// symmetric to the artifact adapter's Distributor: Get fans reads across the
// current placement (first non-empty wins), Set fans writes to every
// replica with a TTL.
type DistributedCache struct {
	router *placement.Router[[]byte]
}

// NewDistributedCache wraps router with the cache-specific convenience API.
func NewDistributedCache(router *placement.Router[[]byte]) *DistributedCache {
	return &DistributedCache{router: router}
}

// Get reads key from the current placement, returning the first hit.
func (d *DistributedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for _, node := range d.router.Placement(key) {
		v, ok, err := node.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// Set writes value to every node in the current placement for key, with ttl
// applied on each replica. A zero ttl means the entry never expires.
func (d *DistributedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	opts := &Options{TTL: ttl}
	for _, node := range d.router.Placement(key) {
		if err := node.Put(ctx, key, value, opts); err != nil {
			return err
		}
	}
	return nil
}
