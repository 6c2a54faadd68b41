package vector

import (
	"ringkeeper/pkg/placement"
	"ringkeeper/pkg/rebalance"
)

// NewRebalancer builds the vector rebalancer. Unlike the cache, it has no
// fallback read: upsert is the shard's only write primitive, and a miss
// everywhere a migrated embedding might live is simply nothing to migrate.
func NewRebalancer(router *placement.Router[[]float32]) *rebalance.Executor[[]float32] {
	return &rebalance.Executor[[]float32]{Router: router}
}
