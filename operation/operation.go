package operation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/katalvlaran/flowbalance/rate"
)

// Operation is a forward transition. For a Split, In holds one value and Out
// two or three; for a Merge, In holds two or three values and Out one.
type Operation struct {
	Kind Kind        `json:"kind"`
	In   []rate.Rate `json:"in"`
	Out  []rate.Rate `json:"out"`
}

// NewSplit builds a split of in into parts. parts must have 2 or 3 elements
// summing exactly to in.
func NewSplit(in rate.Rate, parts ...rate.Rate) (Operation, error) {
	if len(parts) != 2 && len(parts) != 3 {
		return Operation{}, fmt.Errorf("%w: split into %d", ErrArity, len(parts))
	}
	total, err := rate.Sum(parts)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: split %s -> %s", ErrOverflow, in, join(parts))
	}
	if total != in {
		return Operation{}, fmt.Errorf("%w: split %s -> %s", ErrNotConserved, in, join(parts))
	}

	return Operation{Kind: Split, In: []rate.Rate{in}, Out: slices.Clone(parts)}, nil
}

// NewMerge builds a merge of inputs into their sum. inputs must have 2 or 3
// elements.
func NewMerge(inputs ...rate.Rate) (Operation, error) {
	if len(inputs) != 2 && len(inputs) != 3 {
		return Operation{}, fmt.Errorf("%w: merge of %d", ErrArity, len(inputs))
	}

	total, err := rate.Sum(inputs)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: merge %s", ErrOverflow, join(inputs))
	}

	return Operation{Kind: Merge, In: slices.Clone(inputs), Out: []rate.Rate{total}}, nil
}

// Cost returns the search cost of o.
func (o Operation) Cost() int64 {
	if o.Kind == Merge {
		return MergeCost
	}

	return SplitCost
}

// Arity returns the number of branches: outputs of a split, inputs of a merge.
func (o Operation) Arity() int {
	if o.Kind == Merge {
		return len(o.In)
	}

	return len(o.Out)
}

// Equal reports whether o and p are the same operation on the same values.
func (o Operation) Equal(p Operation) bool {
	return o.Kind == p.Kind && slices.Equal(o.In, p.In) && slices.Equal(o.Out, p.Out)
}

// String renders o as "split 2 -> 1, 1" or "merge 1, 1 -> 2".
func (o Operation) String() string {
	return o.Kind.String() + " " + join(o.In) + " -> " + join(o.Out)
}

// ReverseOperation is a transition discovered while searching backward from
// the target. It describes how the later state is taken apart into the
// earlier one; Forward flips it into the operation that actually runs.
type ReverseOperation struct {
	Kind ReverseKind
	In   []rate.Rate
	Out  []rate.Rate
}

// NewReverseSplit records that v was produced by merging parts.
func NewReverseSplit(v rate.Rate, parts ...rate.Rate) (ReverseOperation, error) {
	fwd, err := NewMerge(parts...)
	if err != nil {
		return ReverseOperation{}, err
	}
	if fwd.Out[0] != v {
		return ReverseOperation{}, fmt.Errorf("%w: reverse split %s -> %s", ErrNotConserved, v, join(parts))
	}

	return ReverseOperation{Kind: ReverseSplit, In: []rate.Rate{v}, Out: fwd.In}, nil
}

// NewReverseMerge records that equal values were produced by splitting their
// sum.
func NewReverseMerge(values ...rate.Rate) (ReverseOperation, error) {
	if len(values) != 2 && len(values) != 3 {
		return ReverseOperation{}, fmt.Errorf("%w: reverse merge of %d", ErrArity, len(values))
	}
	total, err := rate.Sum(values)
	if err != nil {
		return ReverseOperation{}, fmt.Errorf("%w: reverse merge %s", ErrOverflow, join(values))
	}

	return ReverseOperation{
		Kind: ReverseMerge,
		In:   slices.Clone(values),
		Out:  []rate.Rate{total},
	}, nil
}

// Forward flips r into the forward operation over the same value sets:
// a reverse-split becomes a merge, a reverse-merge becomes a split.
func (r ReverseOperation) Forward() Operation {
	kind := Merge
	if r.Kind == ReverseMerge {
		kind = Split
	}

	return Operation{Kind: kind, In: slices.Clone(r.Out), Out: slices.Clone(r.In)}
}

// Cost returns the cost of the forward equivalent.
func (r ReverseOperation) Cost() int64 {
	if r.Kind == ReverseSplit {
		return MergeCost
	}

	return SplitCost
}

// String renders r as "reverse-split 2 -> 1, 1".
func (r ReverseOperation) String() string {
	return r.Kind.String() + " " + join(r.In) + " -> " + join(r.Out)
}

func join(values []rate.Rate) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}

	return strings.Join(parts, ", ")
}
