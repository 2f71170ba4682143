package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/flowbalance/balancer"
	"github.com/katalvlaran/flowbalance/render"
)

type solveOpts struct {
	in      []string
	out     []string
	maxBelt string
	timeout time.Duration
	json    bool
}

func newSolveCmd(a *app) *cobra.Command {
	o := &solveOpts{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one problem given on the command line",
		Long: `Solve one problem and print the plan.

Examples:
  flowbalance solve --in 2 --out 1x2
  flowbalance solve --in 3,1 --out 2,2 --max-belt 10
  flowbalance solve --in 45 --out 15x3 --timeout 5s --json`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, _ []string) error {
		return a.runSolve(cmd, o)
	})

	f := cmd.Flags()
	f.StringSliceVar(&o.in, "in", nil, "input rates, RATE or RATExCOUNT (repeatable, comma separated)")
	f.StringSliceVar(&o.out, "out", nil, "output rates, RATE or RATExCOUNT (repeatable, comma separated)")
	f.StringVar(&o.maxBelt, "max-belt", "", "per-channel ceiling (default from config)")
	f.DurationVar(&o.timeout, "timeout", 0, "search time limit (default from config)")
	f.BoolVar(&o.json, "json", false, "print the result as JSON")

	return cmd
}

func (a *app) runSolve(cmd *cobra.Command, o *solveOpts) error {
	parser, err := a.parser()
	if err != nil {
		return err
	}
	mb, err := maxBelt(o.maxBelt)
	if err != nil {
		return err
	}
	if mb != 0 {
		parser.MaxBelt = mb
	}
	timeout := a.cfg.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = o.timeout
	}

	line := "-in " + strings.Join(o.in, " ") + " -out " + strings.Join(o.out, " ")
	q, err := parser.Parse(line)
	if err != nil {
		return err
	}
	p, err := q.Problem()
	if err != nil {
		return err
	}

	res, cached, err := a.solve(cmd.Context(), p, timeout)
	if err != nil {
		return err
	}
	if err := writeResult(cmd.OutOrStdout(), p, res, cached, o.json); err != nil {
		return err
	}

	return res.Err()
}

// writeResult prints res as text or JSON.
func writeResult(w io.Writer, p *balancer.Problem, res *balancer.Result, cached, asJSON bool) error {
	if asJSON {
		return render.JSON(w, p, res)
	}
	if err := render.Result(w, res); err != nil {
		return err
	}
	if cached {
		_, err := fmt.Fprintln(w, "source: plan cache")
		return err
	}

	return nil
}
