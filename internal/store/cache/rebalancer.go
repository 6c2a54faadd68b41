package cache

import (
	"time"

	"ringkeeper/pkg/placement"
	"ringkeeper/pkg/rebalance"
)

// NewRebalancer builds the cache's rebalance.Executor. Its fallback read, run
// only when no pre-change adapter has a copy of the key, re-tries the
// router's live (post-change) placement — "may compute upstream in real
// systems" per the reference design; here a double miss is simply a no-op.
// Migrated entries are written back with defaultTTL, since the plan itself
// carries no TTL information.
func NewRebalancer(router *placement.Router[[]byte], defaultTTL time.Duration) *rebalance.Executor[[]byte] {
	dc := NewDistributedCache(router)
	return &rebalance.Executor[[]byte]{
		Router:   router,
		Fallback: dc.Get,
		Opts: func([]byte) placement.PutOptions {
			return &Options{TTL: defaultTTL}
		},
	}
}
