// Package state models the set of channels present at one point of a plan:
// a multiset of rate.Rate values kept in canonical ascending order.
//
// Two States are equal iff their sorted sequences are equal; the order in
// which values were produced never matters. Every freshly produced value
// sequence must go through Canonicalize (or New) before it is compared,
// stored or used as a key.
//
// Validate implements the GCD gate: a state is only worth exploring when it is
// non-empty and every value is a multiple of, and not smaller than, the gate
// divisor derived from the problem's initial and target values.
//
// Complexity
//
//   - Canonicalize / New: O(n log n).
//   - Validate, Sum, Max, Key: O(n).
package state
