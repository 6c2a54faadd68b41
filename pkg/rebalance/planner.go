// Package rebalance diffs two ring snapshots over a key set to produce a
// migration plan, and drives execution of that plan against a generic
// placement router.
package rebalance

import "ringkeeper/pkg/ring"

// Move describes a single key's primary ownership change. From/To are ""
// when the respective ring has no owner for the key (an empty ring).
type Move struct {
	From string
	To   string
}

// Plan maps a key to its ownership Move. Only keys whose owner changed
// appear here.
type Plan map[string]Move

// PlanMoved computes, for every key in keys, the primary owner under before
// and under after; the key is included in the returned Plan only when the
// two owners differ (absence counts as its own distinct value).
func PlanMoved(keys []string, before, after *ring.Ring) Plan {
	plan := make(Plan)
	for _, key := range keys {
		from := before.GetNode(key)
		to := after.GetNode(key)
		if from != to {
			plan[key] = Move{From: from, To: to}
		}
	}
	return plan
}

// Stats summarizes a Plan.
type Stats struct {
	MovedCount int
	ByTo       map[string]int
	ByFrom     map[string]int
}

// PlanStats counts moves in plan, bucketed by destination and source node.
// Empty (absent) ids are not counted on either side.
func PlanStats(plan Plan) Stats {
	s := Stats{ByTo: make(map[string]int), ByFrom: make(map[string]int)}
	for _, mv := range plan {
		s.MovedCount++
		if mv.To != "" {
			s.ByTo[mv.To]++
		}
		if mv.From != "" {
			s.ByFrom[mv.From]++
		}
	}
	return s
}
