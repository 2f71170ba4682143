package neighbors

import (
	"errors"

	"github.com/katalvlaran/flowbalance/operation"
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/state"
)

// Forward returns every admissible successor of s: splits first, then
// merges, each in ascending value order.
func Forward(s state.State, lim Limits) ([]Move, error) {
	splits, err := Splits(s)
	if err != nil {
		return nil, err
	}
	merges, err := Merges(s)
	if err != nil {
		return nil, err
	}

	out := make([]Move, 0, len(splits)+len(merges))
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

// Splits proposes, for each distinct non-zero value v of s, the exact halving
// and the exact three-way split of one occurrence of v.
func Splits(s state.State) ([]Move, error) {
	var out []Move
	for _, v := range s.Distinct() {
		if v == 0 {
			continue
		}
		for _, parts := range [...]rate.Rate{2, 3} {
			if v%parts != 0 {
				continue
			}
			outputs := make([]rate.Rate, parts)
			for i := range outputs {
				outputs[i] = v / parts
			}
			op, err := operation.NewSplit(v, outputs...)
			if err != nil {
				return nil, err
			}
			next, _ := s.Without([]rate.Rate{v}, outputs...)
			out = append(out, Move{Op: op, State: next})
		}
	}

	return out, nil
}

// Merges proposes every merge of 2 or 3 values of s, one per distinct value
// tuple. Tuples whose sum does not fit a rate.Rate are skipped.
func Merges(s state.State) ([]Move, error) {
	var out []Move
	for _, n := range mergeArities {
		for _, combo := range combinations(s, n) {
			op, err := operation.NewMerge(combo...)
			if errors.Is(err, operation.ErrOverflow) {
				continue
			}
			if err != nil {
				return nil, err
			}
			next, ok := s.Without(combo, op.Out[0])
			if !ok {
				continue
			}
			out = append(out, Move{Op: op, State: next})
		}
	}

	return out, nil
}

// combinations returns every distinct ascending n-tuple that can be drawn
// from the sorted multiset values. Tuples that differ only in which copy of a
// repeated value was drawn are emitted once.
func combinations(values []rate.Rate, n int) [][]rate.Rate {
	if n <= 0 || n > len(values) {
		return nil
	}
	var (
		out  [][]rate.Rate
		pick = make([]rate.Rate, 0, n)
		walk func(start int)
	)
	walk = func(start int) {
		if len(pick) == n {
			combo := make([]rate.Rate, n)
			copy(combo, pick)
			out = append(out, combo)

			return
		}
		for i := start; i <= len(values)-(n-len(pick)); i++ {
			// the same value at the same depth yields the same tuple
			if i > start && values[i] == values[i-1] {
				continue
			}
			pick = append(pick, values[i])
			walk(i + 1)
			pick = pick[:len(pick)-1]
		}
	}
	walk(0)

	return out
}
