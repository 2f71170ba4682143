package neighbors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/flowbalance/neighbors"
	"github.com/katalvlaran/flowbalance/operation"
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/state"
)

func describe[M neighbors.Move | neighbors.ReverseMove](moves []M) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		switch v := any(m).(type) {
		case neighbors.Move:
			out[i] = v.Op.String() + " => " + v.State.String()
		case neighbors.ReverseMove:
			out[i] = v.Op.String() + " => " + v.State.String()
		}
	}

	return out
}

// TestSplits proposes only exact halvings and thirds, one per distinct value.
// The gate is applied by Forward, not here.
func TestSplits(t *testing.T) {
	moves, err := neighbors.Splits(state.MustParse("6", "6", "4", "5"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"split 4 -> 2, 2 => (2, 2, 5, 6, 6)",
		"split 5 -> 2.5, 2.5 => (2.5, 2.5, 4, 6, 6)",
		"split 6 -> 3, 3 => (3, 3, 4, 5, 6)",
		"split 6 -> 2, 2, 2 => (2, 2, 2, 4, 5, 6)",
	}, describe(moves))
}

// TestMerges deduplicates by value tuple and removes one copy per value.
func TestMerges(t *testing.T) {
	s := state.MustParse("1", "1", "2")
	moves, err := neighbors.Merges(s)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"merge 1, 1 -> 2 => (2, 2)",
		"merge 1, 2 -> 3 => (1, 3)",
		"merge 1, 1, 2 -> 4 => (4)",
	}, describe(moves))

	for _, m := range moves {
		assert.Equal(t, s.Sum(), m.State.Sum(), "merge must conserve flow")
	}
}

func TestMerges_TooSmall(t *testing.T) {
	moves, err := neighbors.Merges(state.MustParse("1"))
	require.NoError(t, err)
	assert.Empty(t, moves)
}

// TestForward_Capacity: the merge 3+3 -> 6 is never a candidate under a
// ceiling of 5.
func TestForward_Capacity(t *testing.T) {
	s := state.MustParse("3", "3")
	lim := neighbors.Limits{GCD: rate.MustParse("3"), Capacity: rate.MustParse("5")}
	moves, err := neighbors.Forward(s, lim)
	require.NoError(t, err)
	for _, m := range moves {
		assert.NotEqual(t, operation.Merge, m.Op.Kind, "unexpected %s", m.Op)
		assert.LessOrEqual(t, m.State.Max(), lim.Capacity)
	}
	assert.Empty(t, moves)

	lim.Capacity = rate.MustParse("6")
	moves, err = neighbors.Forward(s, lim)
	require.NoError(t, err)
	assert.Equal(t, []string{"merge 3, 3 -> 6 => (6)"}, describe(moves))
}

// TestForward_Gate drops splits that fall below or off the gate divisor.
func TestForward_Gate(t *testing.T) {
	lim := neighbors.Limits{GCD: rate.MustParse("1"), Capacity: rate.MustParse("1200")}
	moves, err := neighbors.Forward(state.MustParse("3"), lim)
	require.NoError(t, err)
	assert.Equal(t, []string{"split 3 -> 1, 1, 1 => (1, 1, 1)"}, describe(moves))

	for _, m := range moves {
		assert.True(t, state.Validate(m.State, lim.GCD))
	}
}

// TestReverseSplits enumerates gcd-aligned pairs and triples once each.
func TestReverseSplits(t *testing.T) {
	lim := neighbors.Limits{GCD: rate.MustParse("1")}
	moves, err := neighbors.ReverseSplits(state.MustParse("4"), lim)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"reverse-split 4 -> 1, 3 => (1, 3)",
		"reverse-split 4 -> 1, 1, 2 => (1, 1, 2)",
		"reverse-split 4 -> 2, 2 => (2, 2)",
	}, describe(moves))

	for _, m := range moves {
		assert.Equal(t, operation.Merge, m.Op.Forward().Kind)
		assert.Equal(t, rate.MustParse("4"), m.State.Sum())
	}
}

func TestReverseSplits_ZeroGCD(t *testing.T) {
	moves, err := neighbors.ReverseSplits(state.MustParse("4"), neighbors.Limits{})
	require.NoError(t, err)
	assert.Empty(t, moves)
}

// TestReverseSplits_Count: v/gcd = 12 has 6 pairs and 12 triples.
func TestReverseSplits_Count(t *testing.T) {
	lim := neighbors.Limits{GCD: rate.MustParse("1")}
	moves, err := neighbors.ReverseSplits(state.MustParse("12"), lim)
	require.NoError(t, err)
	require.Len(t, moves, 18)

	seen := make(map[string]bool, len(moves))
	for _, m := range moves {
		key := m.State.Key()
		assert.False(t, seen[key], "duplicate %s", m.Op)
		seen[key] = true
		assert.Equal(t, rate.MustParse("12"), m.State.Sum())
	}

	lim.MaxCandidates = len(moves)
	_, err = neighbors.ReverseSplits(state.MustParse("12"), lim)
	assert.NoError(t, err, "a budget equal to the count is enough")
}

// TestReverseSplits_Budget: a fine gcd under a large value yields far more
// candidates than the budget allows.
func TestReverseSplits_Budget(t *testing.T) {
	lim := neighbors.Limits{GCD: rate.MustParse("0.00000001"), MaxCandidates: 1000}
	_, err := neighbors.ReverseSplits(state.MustParse("1199.99999999"), lim)
	assert.ErrorIs(t, err, neighbors.ErrTooManyCandidates)

	_, err = neighbors.Backward(state.MustParse("1199.99999999", "0.00000001"), lim)
	assert.ErrorIs(t, err, neighbors.ErrTooManyCandidates)
}

// TestReverseSplits_Stop: an unbounded enumeration still quits once Stop
// reports true.
func TestReverseSplits_Stop(t *testing.T) {
	polls := 0
	lim := neighbors.Limits{
		GCD: rate.MustParse("0.00000001"),
		Stop: func() bool {
			polls++
			return polls >= 3
		},
	}
	_, err := neighbors.ReverseSplits(state.MustParse("1200"), lim)
	assert.ErrorIs(t, err, neighbors.ErrInterrupted)
	assert.Equal(t, 3, polls)
}

// TestMerges_Overflow skips tuples whose sum does not fit.
func TestMerges_Overflow(t *testing.T) {
	moves, err := neighbors.Merges(state.New(1, 2, rate.Max))
	require.NoError(t, err)
	assert.Equal(t, []string{"merge 0.00000001, 0.00000002 -> 0.00000003 => (0.00000003, 184467440737.09551615)"}, describe(moves))

	rev, err := neighbors.ReverseMerges(state.New(rate.Max, rate.Max))
	require.NoError(t, err)
	assert.Empty(t, rev)
}

// TestReverseMerges joins two or three equal values.
func TestReverseMerges(t *testing.T) {
	moves, err := neighbors.ReverseMerges(state.MustParse("1", "1", "1", "2"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"reverse-merge 1, 1 -> 2 => (1, 2, 2)",
		"reverse-merge 1, 1, 1 -> 3 => (2, 3)",
	}, describe(moves))

	for _, m := range moves {
		assert.Equal(t, operation.Split, m.Op.Forward().Kind)
	}
}

// TestBackward_Capacity drops predecessors above the ceiling.
func TestBackward_Capacity(t *testing.T) {
	lim := neighbors.Limits{GCD: rate.MustParse("1"), Capacity: rate.MustParse("3")}
	moves, err := neighbors.Backward(state.MustParse("2", "2"), lim)
	require.NoError(t, err)
	assert.Equal(t, []string{"reverse-split 2 -> 1, 1 => (1, 1, 2)"}, describe(moves))
}

func TestLimits_Admit(t *testing.T) {
	lim := neighbors.Limits{GCD: 2}
	assert.True(t, lim.Admit(state.New(2, 400)), "zero capacity is unbounded")
	assert.False(t, lim.Admit(state.New(3)))
	lim.Capacity = 100
	assert.False(t, lim.Admit(state.New(2, 400)))
}
