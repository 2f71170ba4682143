package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/flowbalance/balancer"
	"github.com/katalvlaran/flowbalance/config"
	"github.com/katalvlaran/flowbalance/query"
	"github.com/katalvlaran/flowbalance/render"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(strings.NewReader(stdin))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestSolveCmd(t *testing.T) {
	out, _, err := execute(t, "", "solve", "--in", "3", "--out", "1,2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out,
		"1. split 3 -> 1, 1, 1 => (1, 1, 1)\n2. merge 1, 1 -> 2 => (1, 2)\nsolved: 2 steps, cost 4\n"), out)
	assert.Contains(t, out, "states examined:")
}

func TestSolveCmd_Unbalanced(t *testing.T) {
	out, _, err := execute(t, "", "solve", "--in", "1", "--out", "1x2")
	assert.ErrorIs(t, err, balancer.ErrUnbalanced)
	assert.Contains(t, out, "no plan: "+balancer.ErrUnbalanced.Error())
}

func TestSolveCmd_Errors(t *testing.T) {
	_, _, err := execute(t, "", "solve", "--in", "abc", "--out", "1")
	assert.ErrorIs(t, err, query.ErrBadToken)

	_, _, err = execute(t, "", "solve", "--in", "1", "--out", "1", "--max-belt", "x")
	assert.Error(t, err)

	_, _, err = execute(t, "", "solve", "--in", "1")
	assert.ErrorIs(t, err, query.ErrNoOutputs)
}

func TestSolveCmd_JSON(t *testing.T) {
	out, _, err := execute(t, "", "solve", "--in", "45", "--out", "15x3", "--max-belt", "45", "--json")
	require.NoError(t, err)

	var rep render.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "solved", rep.Reason)
	assert.Equal(t, "in (45) out (15, 15, 15) max 45", rep.Problem)
	assert.NotEmpty(t, rep.RunID)
	require.Len(t, rep.Steps, 1)
	assert.Equal(t, "split 45 -> 15, 15, 15", rep.Steps[0].Op.String())
	assert.Contains(t, out, `"in":["45"],"out":["15","15","15"]`)
}

// TestRootCmd_Help: the search is best-first, so help must not promise the
// cheapest plan.
func TestRootCmd_Help(t *testing.T) {
	out, _, err := execute(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "searches for a low-cost sequence")
	assert.Contains(t, out, "not guaranteed to be the")
	assert.NotContains(t, out, "the cheapest sequence")
}

func TestSolveCmd_Cache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "plans.db")
	args := []string{"--cache", cache, "solve", "--in", "2", "--out", "1x2"}

	out, _, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.NotContains(t, out, "source: plan cache")

	out, _, err = execute(t, "", args...)
	require.NoError(t, err)
	assert.Contains(t, out, "1. split 2 -> 1, 1 => (1, 1)")
	assert.Contains(t, out, "source: plan cache")
}

func TestSolveCmd_MetricsServer(t *testing.T) {
	out, _, err := execute(t, "", "--metrics-addr", "127.0.0.1:0", "solve", "--in", "2", "--out", "1x2")
	require.NoError(t, err)
	assert.Contains(t, out, "solved")
}

func TestReplCmd(t *testing.T) {
	input := strings.Join([]string{
		"-in 3 -out 1 2",
		"-in 1 -foo",
		"",
		"-in 2",
		"-q",
		"-in 2 -out 1 1",
	}, "\n")
	out, _, err := execute(t, input, "repl")
	require.NoError(t, err)

	assert.NotContains(t, out, prompt, "no prompt without a terminal")
	assert.Contains(t, out, "2. merge 1, 1 -> 2 => (1, 2)")
	assert.Contains(t, out, "error: "+query.ErrUnknownFlag.Error()+": -foo")
	assert.Contains(t, out, "error: "+query.ErrNoOutputs.Error())
	assert.Contains(t, out, "Quitting")
	assert.NotContains(t, out, "split 2 -> 1, 1", "lines after -q are ignored")
}

func TestReplCmd_EOF(t *testing.T) {
	out, _, err := execute(t, "-in 2 -out 1 1\n", "repl", "--json")
	require.NoError(t, err)

	var rep render.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "solved", rep.Reason)
}

func TestBatchCmd(t *testing.T) {
	path := writeTemp(t, "problems.yaml", `
problems:
  - name: halves
    query: -in 2 -out 1x2
  - name: thirds
    in: ["45"]
    out: ["15x3"]
    max_belt: "45"
  - query: -in 1 -out 1 1
  - name: broken
    query: -in 1 -bogus
`)
	out, _, err := execute(t, "", "batch", path, "--jobs", "2")
	assert.ErrorIs(t, err, ErrBatchFailed)
	assert.Contains(t, err.Error(), "2 of 4")

	halves := strings.Index(out, "== halves ==")
	thirds := strings.Index(out, "== thirds ==")
	third := strings.Index(out, "== #3 ==")
	broken := strings.Index(out, "== broken ==")
	require.True(t, halves >= 0 && thirds >= 0 && third >= 0 && broken >= 0, out)
	assert.True(t, halves < thirds && thirds < third && third < broken, "results keep file order")
	assert.Contains(t, out, "1. split 45 -> 15, 15, 15 => (15, 15, 15)")
	assert.Contains(t, out, "no plan: "+balancer.ErrUnbalanced.Error())
	assert.Contains(t, out, "error: "+query.ErrUnknownFlag.Error())
}

func TestBatchCmd_JSON(t *testing.T) {
	path := writeTemp(t, "problems.yaml", `
problems:
  - name: halves
    query: -in 2 -out 1x2
  - name: broken
    query: -in x
`)
	out, _, err := execute(t, "", "batch", path, "--json")
	assert.ErrorIs(t, err, ErrBatchFailed)

	var reps []render.Report
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var rep render.Report
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rep))
		reps = append(reps, rep)
	}
	require.Len(t, reps, 2)
	assert.Equal(t, "halves", reps[0].Name)
	assert.Equal(t, "solved", reps[0].Reason)
	assert.Equal(t, "broken", reps[1].Name)
	assert.Equal(t, "error", reps[1].Reason)
	assert.NotEmpty(t, reps[1].Error)
}

func TestBatchCmd_BadFile(t *testing.T) {
	_, _, err := execute(t, "", "batch", writeTemp(t, "p.yaml", "problem: []\n"))
	assert.Error(t, err)

	_, _, err = execute(t, "", "batch", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)

	_, _, err = execute(t, "", "batch", writeTemp(t, "p.yaml", "problems: []\n"), "--jobs", "0")
	assert.Error(t, err)
}

func TestConfigCmd(t *testing.T) {
	path := writeTemp(t, "flowbalance.yaml", "jobs: 9\nmax_belt: \"60\"\n")
	out, _, err := execute(t, "", "--config", path, "--log-level", "debug", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "jobs: 9")
	assert.Contains(t, out, `max_belt: "60"`)
	assert.Contains(t, out, "log_level: debug")

	_, _, err = execute(t, "", "--config", writeTemp(t, "bad.yaml", "jobs: -1\n"), "config")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, _, err = execute(t, "", "--log-level", "loud", "config")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestConfig_MaxBeltDefault(t *testing.T) {
	path := writeTemp(t, "flowbalance.yaml", "max_belt: \"10\"\n")
	out, _, err := execute(t, "", "--config", path, "solve", "--in", "15", "--out", "5x3")
	assert.ErrorIs(t, err, balancer.ErrExhausted, "15 exceeds the configured ceiling")
	assert.Contains(t, out, "no plan")
}
