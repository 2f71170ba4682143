package balancer_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/flowbalance/balancer"
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/state"
)

// ExampleSolve splits one channel of 3 into 1 and 2.
func ExampleSolve() {
	p, err := balancer.NewProblem(
		state.MustParse("3"),
		state.MustParse("1", "2"),
		rate.MustParse("1200"),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	res, err := balancer.Solve(context.Background(), p)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for i, step := range res.Steps {
		fmt.Printf("%d. %s => %s\n", i+1, step.Op, step.State)
	}
	fmt.Println(res.Reason, "cost", res.Cost())
	// Output:
	// 1. split 3 -> 1, 1, 1 => (1, 1, 1)
	// 2. merge 1, 1 -> 2 => (1, 2)
	// solved cost 4
}

// ExampleResult_Err shows how failure outcomes map to sentinel errors.
func ExampleResult_Err() {
	p, _ := balancer.NewProblem(state.MustParse("1"), state.MustParse("1", "1"), rate.MustParse("1200"))
	res, _ := balancer.Solve(context.Background(), p)
	fmt.Println(res.Reason)
	fmt.Println(res.Err())
	// Output:
	// unbalanced
	// balancer: input and output totals differ
}
