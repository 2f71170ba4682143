package neighbors

import (
	"errors"

	"github.com/katalvlaran/flowbalance/operation"
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/state"
)

var (
	// ErrInterrupted is returned when Limits.Stop asked a generator to quit.
	ErrInterrupted = errors.New("neighbors: enumeration interrupted")

	// ErrTooManyCandidates is returned when one expansion would exceed
	// Limits.MaxCandidates.
	ErrTooManyCandidates = errors.New("neighbors: candidate budget exceeded")
)

// stopEvery is how many candidates a generator produces between polls of
// Limits.Stop.
const stopEvery = 1024

// Limits bounds the states a generator may emit.
//
// GCD           – gate divisor; see state.Validate. Must be > 0.
// Capacity      – per-channel ceiling. Zero means unbounded.
// MaxCandidates – per-call enumeration budget. Zero means unbounded.
// Stop          – polled during long enumerations; nil never stops.
type Limits struct {
	GCD           rate.Rate
	Capacity      rate.Rate
	MaxCandidates int
	Stop          func() bool
}

// Admit reports whether s passes the GCD gate and respects the ceiling.
func (l Limits) Admit(s state.State) bool {
	if !state.Validate(s, l.GCD) {
		return false
	}

	return l.Capacity == 0 || s.Max() <= l.Capacity
}

// Move is a forward candidate: the operation and the state it produces.
type Move struct {
	Op    operation.Operation
	State state.State
}

// ReverseMove is a backward candidate: the reverse operation and the
// predecessor state it leads to.
type ReverseMove struct {
	Op    operation.ReverseOperation
	State state.State
}

// mergeArities lists the combination sizes a merge may take.
var mergeArities = [...]int{2, 3}

// budget counts candidates against Limits.MaxCandidates and polls
// Limits.Stop every stopEvery candidates.
type budget struct {
	limits Limits
	n      int
}

func (b *budget) spend() error {
	b.n++
	if b.limits.MaxCandidates > 0 && b.n > b.limits.MaxCandidates {
		return ErrTooManyCandidates
	}
	if b.limits.Stop != nil && b.n%stopEvery == 0 && b.limits.Stop() {
		return ErrInterrupted
	}

	return nil
}
