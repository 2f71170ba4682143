package balancer

import (
	"fmt"
	"slices"
)

// buildPath stitches the plan together at the meeting point:
//
//  1. walk the forward parents from the meeting state back to the initial
//     state, collecting (operation, state reached) pairs, then reverse them;
//  2. walk the backward parents from the meeting state to the target,
//     flipping each reverse operation to its forward form and pairing it with
//     the state it produces (the parent on the backward side).
//
// Each walk is bounded by the number of interned states; exceeding it means
// the parent tables are corrupt (ErrBrokenPath).
func (r *runner) buildPath() ([]Step, error) {
	limit := r.states.len()

	var head []Step
	for cur := r.meeting; cur != r.initial; {
		if len(head) > limit {
			return nil, fmt.Errorf("%w: forward chain longer than %d", ErrBrokenPath, limit)
		}
		via := r.fwd.parent[cur]
		if via.parent == noHandle {
			return nil, fmt.Errorf("%w: forward chain stops at %s", ErrBrokenPath, r.states.state(cur))
		}
		head = append(head, Step{Op: via.fwd, State: r.states.state(cur)})
		cur = via.parent
	}
	slices.Reverse(head)

	tail := make([]Step, 0)
	for cur := r.meeting; cur != r.target; {
		if len(tail) > limit {
			return nil, fmt.Errorf("%w: backward chain longer than %d", ErrBrokenPath, limit)
		}
		via := r.bwd.parent[cur]
		if via.parent == noHandle {
			return nil, fmt.Errorf("%w: backward chain stops at %s", ErrBrokenPath, r.states.state(cur))
		}
		tail = append(tail, Step{Op: via.rev.Forward(), State: r.states.state(via.parent)})
		cur = via.parent
	}

	return append(head, tail...), nil
}
