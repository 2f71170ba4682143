package neighbors

import (
	"errors"

	"github.com/katalvlaran/flowbalance/operation"
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/state"
)

// Backward returns every admissible predecessor of s: reverse-splits first,
// then reverse-merges.
func Backward(s state.State, lim Limits) ([]ReverseMove, error) {
	splits, err := ReverseSplits(s, lim)
	if err != nil {
		return nil, err
	}
	merges, err := ReverseMerges(s)
	if err != nil {
		return nil, err
	}

	out := make([]ReverseMove, 0, len(splits)+len(merges))
	for _, m := range splits {
		if lim.Admit(m.State) {
			out = append(out, m)
		}
	}
	for _, m := range merges {
		if lim.Admit(m.State) {
			out = append(out, m)
		}
	}

	return out, nil
}

// ReverseSplits enumerates, for each distinct value v of s, the lim.GCD-aligned
// pairs and triples that a merge could have combined into v. Each part
// multiset is emitted once, ordered by its smallest part.
//
// The count grows with (v/gcd)², so enumeration is bounded by
// lim.MaxCandidates (ErrTooManyCandidates) and polls lim.Stop
// (ErrInterrupted). A zero gcd yields no candidates.
func ReverseSplits(s state.State, lim Limits) ([]ReverseMove, error) {
	gcd := lim.GCD
	if gcd == 0 {
		return nil, nil
	}
	b := budget{limits: lim}
	var out []ReverseMove
	for _, v := range s.Distinct() {
		// a is the smallest part; the pair (a, v-a) comes before every
		// triple (a, b, c) with a <= b <= c.
		for a := gcd; a <= v/2 && a >= gcd; a += gcd {
			if err := b.spend(); err != nil {
				return nil, err
			}
			m, err := reverseSplit(s, v, a, v-a)
			if err != nil {
				return nil, err
			}
			out = append(out, m)

			rest := v - a
			for p := a; p <= rest/2 && p >= a; p += gcd {
				if err := b.spend(); err != nil {
					return nil, err
				}
				m, err = reverseSplit(s, v, a, p, rest-p)
				if err != nil {
					return nil, err
				}
				out = append(out, m)
			}
		}
	}

	return out, nil
}

func reverseSplit(s state.State, v rate.Rate, parts ...rate.Rate) (ReverseMove, error) {
	op, err := operation.NewReverseSplit(v, parts...)
	if err != nil {
		return ReverseMove{}, err
	}
	// v is drawn from s, so removing one copy always succeeds.
	prev, _ := s.Without([]rate.Rate{v}, parts...)

	return ReverseMove{Op: op, State: prev}, nil
}

// ReverseMerges joins two copies of any value occurring at least twice, and
// three copies of any value occurring at least three times. Joins that do not
// fit a rate.Rate are skipped.
func ReverseMerges(s state.State) ([]ReverseMove, error) {
	counts := s.Counts()
	var out []ReverseMove
	for _, v := range s.Distinct() {
		for _, n := range mergeArities {
			if counts[v] < n {
				continue
			}
			same := make([]rate.Rate, n)
			for i := range same {
				same[i] = v
			}
			op, err := operation.NewReverseMerge(same...)
			if errors.Is(err, operation.ErrOverflow) {
				continue
			}
			if err != nil {
				return nil, err
			}
			prev, _ := s.Without(same, op.Out[0])
			out = append(out, ReverseMove{Op: op, State: prev})
		}
	}

	return out, nil
}
