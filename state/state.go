package state

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/katalvlaran/flowbalance/rate"
)

// State is a canonical (ascending) multiset of flow values.
// The zero value is the empty state.
type State []rate.Rate

// New copies values and returns their canonical State.
func New(values ...rate.Rate) State {
	return Canonicalize(slices.Clone(values))
}

// Canonicalize sorts values in place and returns them as a State.
// Callers that still need the original order must pass a copy.
func Canonicalize(values []rate.Rate) State {
	slices.Sort(values)

	return State(values)
}

// Parse builds a State from decimal strings, see rate.Parse.
func Parse(values ...string) (State, error) {
	out := make([]rate.Rate, 0, len(values))
	for _, v := range values {
		r, err := rate.Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return Canonicalize(out), nil
}

// MustParse is like Parse but panics on error.
func MustParse(values ...string) State {
	s, err := Parse(values...)
	if err != nil {
		panic(err)
	}

	return s
}

// Validate reports whether s passes the GCD gate: s is non-empty and every
// value is at least gcd and an exact multiple of it. A zero gcd rejects
// every state.
func Validate(s State, gcd rate.Rate) bool {
	if len(s) == 0 || gcd == 0 {
		return false
	}
	for _, v := range s {
		if v < gcd || v%gcd != 0 {
			return false
		}
	}

	return true
}

// Len returns the number of channels.
func (s State) Len() int { return len(s) }

// Equal reports whether s and o hold the same multiset.
// Both are assumed canonical.
func (s State) Equal(o State) bool { return slices.Equal(s, o) }

// Sum returns the total flow across all channels, saturating at rate.Max.
// Use Total where overflow must be detected.
func (s State) Sum() rate.Rate {
	total, err := s.Total()
	if err != nil {
		return rate.Max
	}

	return total
}

// Total returns the total flow, or rate.ErrOverflow if it does not fit.
func (s State) Total() (rate.Rate, error) {
	return rate.Sum(s)
}

// Max returns the largest value, or 0 for an empty state.
func (s State) Max() rate.Rate {
	if len(s) == 0 {
		return 0
	}

	return s[len(s)-1]
}

// Contains reports whether v occurs at least once.
func (s State) Contains(v rate.Rate) bool {
	_, found := slices.BinarySearch(s, v)

	return found
}

// Counts returns the value-frequency histogram of s.
func (s State) Counts() map[rate.Rate]int {
	counts := make(map[rate.Rate]int, len(s))
	for _, v := range s {
		counts[v]++
	}

	return counts
}

// Distinct returns each value of s once, ascending.
func (s State) Distinct() []rate.Rate {
	return slices.Compact(slices.Clone([]rate.Rate(s)))
}

// Without returns a new canonical State equal to s with exactly one
// occurrence of each value in remove taken out, followed by add.
// ok is false if some value in remove is not present often enough.
func (s State) Without(remove []rate.Rate, add ...rate.Rate) (State, bool) {
	out := make([]rate.Rate, 0, len(s)+len(add))
	out = append(out, s...)
	for _, r := range remove {
		i := slices.Index(out, r)
		if i < 0 {
			return nil, false
		}
		out = slices.Delete(out, i, i+1)
	}
	out = append(out, add...)

	return Canonicalize(out), true
}

// Key returns a compact binary encoding of s, suitable as a map key.
// Equal states always produce equal keys.
func (s State) Key() string {
	buf := make([]byte, 0, len(s)*binary.MaxVarintLen64/2)
	for _, v := range s {
		buf = binary.AppendUvarint(buf, uint64(v))
	}

	return string(buf)
}

// String renders s as "(a, b, c)".
func (s State) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte(')')

	return b.String()
}
