// Command flowbalance plans split and merge operations that turn a set of
// input flows into a set of output flows.
//
// Examples:
//
//	flowbalance solve --in 2,2 --out 1x4
//	flowbalance solve --in 45 --out 15x3 --max-belt 45 --json
//	flowbalance repl
//	flowbalance batch problems.yaml --jobs 8
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdin).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
