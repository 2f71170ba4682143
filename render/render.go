// Package render prints balancer results for people and machines.
//
// Steps and Summary produce the plain-text layout used by the CLI:
//
//	1. split 3 -> 1, 1, 1 => (1, 1, 1)
//	2. merge 1, 1 -> 2 => (1, 2)
//	solved: 2 steps, cost 4
//	states generated: 3
//	states examined: 3
//	elapsed: 0.000120s
//
// JSON writes the same information as one JSON document per result.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/katalvlaran/flowbalance/balancer"
)

// Steps writes one line per step: "<ordinal>. <operation> => <state>".
// Ordinals start at 1. A result without steps writes nothing.
func Steps(w io.Writer, res *balancer.Result) error {
	if res == nil {
		return nil
	}
	for i, step := range res.Steps {
		if _, err := fmt.Fprintf(w, "%d. %s => %s\n", i+1, step.Op, step.State); err != nil {
			return err
		}
	}

	return nil
}

// Summary writes the outcome line followed by the search diagnostics.
func Summary(w io.Writer, res *balancer.Result) error {
	if res == nil {
		return nil
	}
	var head string
	if res.Solved() {
		head = fmt.Sprintf("solved: %d steps, cost %d", len(res.Steps), res.Cost())
	} else {
		head = fmt.Sprintf("no plan: %s", res.Err())
	}
	_, err := fmt.Fprintf(w, "%s\nstates generated: %d\nstates examined: %d\nelapsed: %.6fs\n",
		head,
		res.Stats.Generated,
		res.Stats.Examined,
		res.Stats.Elapsed.Seconds(),
	)

	return err
}

// Result writes Steps then Summary.
func Result(w io.Writer, res *balancer.Result) error {
	if err := Steps(w, res); err != nil {
		return err
	}

	return Summary(w, res)
}

// Report is the JSON shape of a result.
type Report struct {
	Name      string          `json:"name,omitempty"`
	RunID     string          `json:"run_id,omitempty"`
	Problem   string          `json:"problem,omitempty"`
	Reason    string          `json:"reason"`
	Cost      int64           `json:"cost"`
	Steps     []balancer.Step `json:"steps"`
	Generated uint64          `json:"states_generated"`
	Examined  uint64          `json:"states_examined"`
	Elapsed   float64         `json:"elapsed_seconds"`
	Error     string          `json:"error,omitempty"`
}

// NewReport flattens res into a Report. p may be nil.
func NewReport(p *balancer.Problem, res *balancer.Result) Report {
	rep := Report{
		RunID:     res.RunID,
		Reason:    res.Reason.String(),
		Cost:      res.Cost(),
		Steps:     res.Steps,
		Generated: res.Stats.Generated,
		Examined:  res.Stats.Examined,
		Elapsed:   res.Stats.Elapsed.Seconds(),
	}
	if p != nil {
		rep.Problem = p.String()
	}
	if rep.Steps == nil {
		rep.Steps = []balancer.Step{}
	}

	return rep
}

// JSON writes res as a single-line JSON document.
func JSON(w io.Writer, p *balancer.Problem, res *balancer.Result) error {
	return json.NewEncoder(w).Encode(NewReport(p, res))
}
