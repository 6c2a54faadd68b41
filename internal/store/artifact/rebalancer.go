package artifact

import (
	"ringkeeper/pkg/placement"
	"ringkeeper/pkg/rebalance"
)

// NewRebalancer builds the artifact rebalancer. It has no fallback read: a
// blob missing from every pre-change host is nothing to migrate. Its write
// path (rebalance.Executor fans out to every adapter in the router's
// current placement) is the same fan-out Distributor.Distribute performs.
func NewRebalancer(router *placement.Router[[]byte]) *rebalance.Executor[[]byte] {
	return &rebalance.Executor[[]byte]{Router: router}
}
