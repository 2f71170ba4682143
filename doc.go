// Package flowbalance plans how to turn one set of flows into another using
// only two moves: split one flow into equal parts, or merge a few flows into
// one.
//
// 🚀 What is flowbalance?
//
//	A small search library plus a CLI that brings together:
//		• Exact fixed-point rates (8 decimal digits, no floats)
//		• Canonical multiset states with a divisibility gate
//		• Split (cost 1) and merge (cost 3) operations with reverse forms
//		• A bidirectional best-first search with a deadline
//		• A SQLite plan cache, Prometheus metrics and a YAML config
//
// Under the hood, everything is organized under these subpackages:
//
//	rate/           fixed-point Rate, decimal parsing, GCD
//	state/          canonical sorted multisets of rates
//	operation/      split/merge operations and their reverse forms
//	neighbors/      forward and backward move generators
//	heuristic/      remaining-cost estimates
//	balancer/       Problem, Solve and Result
//	query/          the "-in 2 -out 1x2 -mb 1200" line syntax
//	render/         text and JSON output
//	config/         YAML settings
//	metrics/        Prometheus recorder
//	store/          SQLite plan cache
//	cmd/flowbalance the command line tool
//
// Quick example:
//
//	p, _ := balancer.NewProblem(state.MustParse("3"), state.MustParse("1", "2"), rate.MustParse("1200"))
//	res, _ := balancer.Solve(ctx, p)
//	render.Result(os.Stdout, res)
//
//	1. split 3 -> 1, 1, 1 => (1, 1, 1)
//	2. merge 1, 1 -> 2 => (1, 2)
//	solved: 2 steps, cost 4
//
//	go install github.com/katalvlaran/flowbalance/cmd/flowbalance@latest
package flowbalance
