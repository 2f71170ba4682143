// Package rate defines Rate, the fixed-point flow magnitude carried by a
// single channel, together with exact decimal parsing, formatting and the
// greatest-common-divisor helpers used by the GCD gate.
//
// What
//
//   - Rate is an unsigned integer count of 1e-8 units (Scale = 1e8).
//     Repeated splits and merges never accumulate rounding drift because no
//     floating point is involved anywhere in the search.
//   - Parse reads decimal text ("2", "2.5", "0.125") exactly; inputs with
//     more than eight fractional digits are rejected with ErrPrecision.
//   - String prints the shortest exact decimal ("2.5", "1", "0.33333333").
//   - GCD and GCDOf compute the divisor that every reachable value must be a
//     multiple of.
//
// Complexity
//
//   - Parse / String: O(len(text)).
//   - GCD: O(log min(a, b)) (binary GCD).
package rate
