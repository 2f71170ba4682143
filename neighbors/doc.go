// Package neighbors enumerates the states reachable from a given state in one
// operation, in both search directions.
//
// Forward generators (used from the initial state):
//
//   - Splits:  replace one occurrence of v with {v/2, v/2} or {v/3, v/3, v/3}.
//     Only exact splits are proposed: a value that is not divisible by 2
//     (resp. 3) is never split that way, so total flow is always conserved.
//   - Merges:  replace any 2 or 3 values with their sum. Combinations are
//     deduplicated by value tuple, and exactly one occurrence of each combined
//     value is removed.
//
// Backward generators (used from the target state):
//
//   - ReverseSplits: "which merge could have produced v": every pair
//     (x·gcd, v−x·gcd) with x in 1..v/gcd/2, and every triple obtained by
//     splitting the second element of a pair the same way.
//   - ReverseMerges: "which split could have produced equal values": two
//     copies of v join into 2v, three copies into 3v.
//
// Forward and Backward run the generators and drop every candidate that fails
// the GCD gate (state.Validate) or holds a value above the capacity ceiling.
//
// Complexity (n = len(state), d = distinct values, m = max value / gcd)
//
//   - Splits: O(d·n); Merges: O(n³) candidates.
//   - ReverseSplits: O(d·m²) candidates; this is the dominant cost of the
//     backward search when the gate divisor is small relative to the values.
package neighbors
