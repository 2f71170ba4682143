package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/flowbalance/balancer"
)

const prompt = "> "

func newReplCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read problems from stdin, one per line",
		Long: `Read problems from standard input in the query syntax and print a plan
for each line. A prompt is shown only when stdin is a terminal.

  -in 2 2 -out 1x4
  -in 45 -out 15x3 -mb 45
  -q`,
		Args: cobra.NoArgs,
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, _ []string) error {
		return a.runRepl(cmd, asJSON)
	})
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each result as JSON")

	return cmd
}

// interactive reports whether r is a terminal.
func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) runRepl(cmd *cobra.Command, asJSON bool) error {
	parser, err := a.parser()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	showPrompt := interactive(a.stdin)
	sc := bufio.NewScanner(a.stdin)

	for {
		if showPrompt {
			fmt.Fprint(out, prompt)
		}
		if !sc.Scan() {
			return sc.Err()
		}

		q, err := parser.Parse(sc.Text())
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if q.Quit {
			fmt.Fprintln(out, "Quitting")
			return nil
		}
		if q.Empty() {
			continue
		}
		p, err := q.Problem()
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}

		res, cached, err := a.solve(cmd.Context(), p, a.cfg.Timeout)
		if errors.Is(err, balancer.ErrOptionViolation) {
			return err
		}
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if err := writeResult(out, p, res, cached, asJSON); err != nil {
			return err
		}
	}
}
