// Package heuristic provides the cost-to-go estimate that orders both search
// frontiers.
//
// Estimate is deliberately cheap and NOT admissible: it can overestimate the
// true remaining cost, so a search guided by it finds a plan quickly but not
// necessarily the cheapest one.
package heuristic

import (
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/state"
)

// Func estimates the cost of turning s into goal under gate divisor gcd.
type Func func(s, goal state.State, gcd rate.Rate) int64

// Per-unit creation costs of a missing goal value.
const (
	costAligned  int64 = 3 // value is gcd-aligned or splittable from a larger multiple
	costMultiple int64 = 2 // some existing value divides it
	costOther    int64 = 1
)

// Estimate charges every goal value that s cannot yet supply, per missing
// copy:
//
//	3 if the value is a multiple of gcd, or some larger value of s is a
//	  multiple of it (one split away);
//	2 if some value of s divides it;
//	1 otherwise.
//
// When s has more channels than goal it adds (len(s)-len(goal))/2 to keep the
// channel count from exploding.
func Estimate(s, goal state.State, gcd rate.Rate) int64 {
	have := s.Counts()
	want := goal.Counts()

	var estimate int64
	for v, needed := range want {
		deficit := needed - have[v]
		if deficit <= 0 {
			continue
		}
		estimate += int64(deficit) * creationCost(s, v, gcd)
	}
	if s.Len() > goal.Len() {
		estimate += int64(s.Len()-goal.Len()) / 2
	}

	return estimate
}

func creationCost(s state.State, v, gcd rate.Rate) int64 {
	if gcd != 0 && v%gcd == 0 {
		return costAligned
	}
	for _, x := range s {
		if v != 0 && x > v && x%v == 0 {
			return costAligned
		}
	}
	for _, x := range s {
		if x != 0 && v%x == 0 {
			return costMultiple
		}
	}

	return costOther
}

// Zero is the trivial estimate. Using it turns both frontiers into
// uniform-cost searches.
func Zero(_, _ state.State, _ rate.Rate) int64 { return 0 }
