package balancer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/flowbalance/balancer"
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/state"
)

// mustProblem builds a problem from decimal strings.
func mustProblem(t testing.TB, in, out []string, capacity string) *balancer.Problem {
	t.Helper()
	p, err := balancer.NewProblem(state.MustParse(in...), state.MustParse(out...), rate.MustParse(capacity))
	require.NoError(t, err)

	return p
}

// requireValidPlan replays every step of res against p and checks that
//   - each step's state is the previous state with op.In replaced by op.Out,
//   - total flow is conserved at every step,
//   - no state exceeds the capacity ceiling,
//   - the last state is the target.
func requireValidPlan(t *testing.T, p *balancer.Problem, res *balancer.Result) {
	t.Helper()
	require.True(t, res.Solved(), "expected a plan, got %s", res.Reason)

	total := p.Initial.Sum()
	require.Equal(t, total, p.Target.Sum())

	cur := p.Initial
	for i, step := range res.Steps {
		next, ok := cur.Without(step.Op.In, step.Op.Out...)
		require.True(t, ok, "step %d: %s not applicable to %s", i+1, step.Op, cur)
		require.True(t, next.Equal(step.State), "step %d: got %s, want %s", i+1, step.State, next)
		require.Equal(t, total, step.State.Sum(), "step %d: flow not conserved", i+1)
		require.LessOrEqual(t, step.State.Max(), p.Capacity, "step %d: over capacity", i+1)
		cur = step.State
	}
	require.True(t, cur.Equal(p.Target), "plan ends at %s, want %s", cur, p.Target)
}
