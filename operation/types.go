// Package operation defines the closed set of transitions between states:
// forward Split/Merge operations and the ReverseOperation counterparts
// produced while searching backward from the target.
//
// Costs reflect a preference for fewer merges:
//
//	Split (1 → 2 or 1 → 3): 1
//	Merge (2 → 1 or 3 → 1): 3
//
// A ReverseOperation costs the same as the forward operation it flips to.
//
// There is no "invalid" operation value. Constructors reject any arity other
// than 2 or 3 with ErrArity; callers treat that as a broken invariant.
package operation

import (
	"errors"
	"fmt"
)

// Costs of the forward operations.
const (
	SplitCost int64 = 1
	MergeCost int64 = 3
)

// Sentinel errors returned by the constructors.
var (
	// ErrArity indicates a split or merge with other than 2 or 3 branches.
	ErrArity = errors.New("operation: arity must be 2 or 3")

	// ErrNotConserved indicates split outputs that do not sum to the input.
	ErrNotConserved = errors.New("operation: outputs do not sum to input")

	// ErrOverflow indicates values whose sum does not fit in a rate.Rate.
	ErrOverflow = errors.New("operation: sum overflows")

	// ErrUnknownKind indicates an unrecognised kind name while decoding.
	ErrUnknownKind = errors.New("operation: unknown kind")
)

// Kind identifies a forward operation.
type Kind uint8

const (
	// Split replaces one value with two or three values.
	Split Kind = iota + 1
	// Merge replaces two or three values with their sum.
	Merge
)

// String returns "split" or "merge".
func (k Kind) String() string {
	switch k {
	case Split:
		return "split"
	case Merge:
		return "merge"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k != Split && k != Merge {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "split":
		*k = Split
	case "merge":
		*k = Merge
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, b)
	}

	return nil
}

// ReverseKind identifies a backward operation.
type ReverseKind uint8

const (
	// ReverseSplit undoes a merge: one value is taken apart into two or
	// three values. It flips to a forward Merge.
	ReverseSplit ReverseKind = iota + 1
	// ReverseMerge undoes a split: two or three equal values are joined.
	// It flips to a forward Split.
	ReverseMerge
)

// String returns "reverse-split" or "reverse-merge".
func (k ReverseKind) String() string {
	switch k {
	case ReverseSplit:
		return "reverse-split"
	case ReverseMerge:
		return "reverse-merge"
	default:
		return fmt.Sprintf("reverse-kind(%d)", uint8(k))
	}
}
