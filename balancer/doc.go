// Package balancer finds a sequence of split and merge operations that turns
// a multiset of input flow rates into a multiset of target rates without any
// channel ever exceeding a capacity ceiling.
//
// What
//
//   - Solve runs a bidirectional best-first search: one frontier grows from
//     the initial state using forward operations, the other from the target
//     state using reverse operations. The frontiers expand in strict
//     alternation until a state popped from one side is already known to the
//     other (the meeting point).
//   - Each frontier is a min-heap ordered by accumulated cost plus the
//     heuristic estimate towards the opposite endpoint; ties pop in push
//     order.
//   - The plan is rebuilt from the two parent tables: the forward half is
//     walked back to the initial state and reversed, the backward half is
//     walked to the target with every reverse operation flipped to its
//     forward equivalent.
//
// Outcomes
//
//   - Solved:     Result.Steps holds the plan (possibly empty if the initial
//     and target states are equal).
//   - Unbalanced: total input flow differs from total output flow; no search
//     is performed.
//   - Exhausted:  both frontiers ran dry without meeting, or an endpoint
//     already exceeds the capacity ceiling.
//   - Timeout:    the context expired (Options.Timeout, default 30s), the
//     expansion cap was reached, or one expansion would enumerate more than
//     Options.MaxCandidates predecessors, before the frontiers met.
//
// Optimality
//
//	The heuristic is not admissible and the loop stops at the first meeting
//	point, so a plan is not guaranteed to have minimum cost.
//
// Determinism
//
//	Generators emit candidates in ascending value order and ties in the heaps
//	break by push sequence, so for a fixed problem and no deadline pressure
//	the same plan is returned every time.
//
// Concurrency
//
//	Solve is single-threaded and keeps all frontier, cost, parent and intern
//	tables local to the call. Separate calls may run concurrently.
//
// Usage
//
//	p, err := balancer.NewProblem(in, out, capacity)
//	if err != nil {
//	    // ErrInvalidProblem
//	}
//	res, err := balancer.Solve(ctx, p,
//	    balancer.WithTimeout(10*time.Second),
//	    balancer.WithLogger(logger),
//	)
//	if err != nil {
//	    // ErrOptionViolation, or operation.ErrArity on a broken invariant
//	}
//	if !res.Solved() {
//	    // errors.Is(res.Err(), balancer.ErrTimeout) ...
//	}
package balancer
