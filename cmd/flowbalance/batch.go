package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/flowbalance/balancer"
	"github.com/katalvlaran/flowbalance/render"
)

// ErrBatchFailed is returned when at least one batch entry has no plan.
var ErrBatchFailed = errors.New("batch: some problems were not solved")

// batchFile is the YAML layout accepted by the batch command:
//
//	problems:
//	  - name: four ways
//	    query: -in 2 2 -out 1x4
//	  - name: thirds
//	    in: ["45"]
//	    out: ["15x3"]
//	    max_belt: "45"
type batchFile struct {
	Problems []batchEntry `yaml:"problems"`
}

type batchEntry struct {
	Name    string   `yaml:"name"`
	Query   string   `yaml:"query"`
	In      []string `yaml:"in"`
	Out     []string `yaml:"out"`
	MaxBelt string   `yaml:"max_belt"`
}

// line renders e in the query syntax.
func (e batchEntry) line() string {
	if e.Query != "" {
		return e.Query
	}
	line := "-in " + strings.Join(e.In, " ") + " -out " + strings.Join(e.Out, " ")
	if e.MaxBelt != "" {
		line += " -mb " + e.MaxBelt
	}

	return line
}

// batchOutcome is the result slot of one entry.
type batchOutcome struct {
	problem *balancer.Problem
	result  *balancer.Result
	cached  bool
	err     error
}

func loadBatch(path string) ([]batchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the batch file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f batchFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode batch file %s: %w", path, err)
	}

	return f.Problems, nil
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		jobs   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "batch <problems.yaml>",
		Short: "Solve every problem listed in a YAML file",
		Long: `Solve the problems of a YAML file concurrently and print the results in
file order.

  problems:
    - name: four ways
      query: -in 2 2 -out 1x4
    - name: thirds
      in: ["45"]
      out: ["15x3"]
      max_belt: "45"`,
		Args: cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("jobs") {
			a.cfg.Jobs = jobs
		}
		return a.runBatch(cmd, args[0], asJSON)
	})
	cmd.Flags().IntVar(&jobs, "jobs", 0, "concurrent solves (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON document per problem")

	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, path string, asJSON bool) error {
	if a.cfg.Jobs < 1 {
		return fmt.Errorf("--jobs must be positive, got %d", a.cfg.Jobs)
	}
	entries, err := loadBatch(path)
	if err != nil {
		return err
	}
	parser, err := a.parser()
	if err != nil {
		return err
	}

	start := time.Now()
	outcomes := make([]batchOutcome, len(entries))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.Jobs)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			out := &outcomes[i]
			q, err := parser.Parse(e.line())
			if err == nil {
				out.problem, err = q.Problem()
			}
			if err != nil {
				out.err = err
				return nil
			}
			out.result, out.cached, out.err = a.solve(ctx, out.problem, a.cfg.Timeout)
			if errors.Is(out.err, balancer.ErrOptionViolation) {
				return out.err
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	enc := json.NewEncoder(w)
	failed := 0
	for i, out := range outcomes {
		name := entries[i].Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if out.err != nil || !out.result.Solved() {
			failed++
		}

		if asJSON {
			rep := render.Report{Name: name, Problem: entries[i].line()}
			if out.err != nil {
				rep.Reason, rep.Error = "error", out.err.Error()
			} else {
				rep = render.NewReport(out.problem, out.result)
				rep.Name = name
			}
			if err := enc.Encode(rep); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(w, "== %s ==\n", name)
		if out.err != nil {
			fmt.Fprintln(w, "error:", out.err)
			continue
		}
		if err := writeResult(w, out.problem, out.result, out.cached, false); err != nil {
			return err
		}
	}
	a.log.Info("batch finished",
		slog.Int("problems", len(entries)),
		slog.Int("failed", failed),
		slog.Int("jobs", a.cfg.Jobs),
		slog.Duration("elapsed", time.Since(start)),
	)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(entries))
	}

	return nil
}
