package balancer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/katalvlaran/flowbalance/heuristic"
	"github.com/katalvlaran/flowbalance/operation"
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/state"
)

// DefaultTimeout is the wall-clock budget applied when no WithTimeout option
// is given.
const DefaultTimeout = 30 * time.Second

// DefaultMaxCandidates bounds the candidates one expansion may enumerate
// when no WithMaxCandidates option is given.
const DefaultMaxCandidates = 1 << 18

// Sentinel errors.
var (
	// ErrInvalidProblem indicates a problem that cannot be searched at all
	// (nil, empty side, zero rate, zero capacity, or a total above rate.Max).
	ErrInvalidProblem = errors.New("balancer: invalid problem")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("balancer: invalid option supplied")

	// ErrBrokenPath indicates parent tables that do not lead back to an
	// endpoint. It signals a bug, never a property of the input.
	ErrBrokenPath = errors.New("balancer: parent chain does not reach endpoint")

	// ErrUnbalanced is the error form of the Unbalanced outcome.
	ErrUnbalanced = errors.New("balancer: input and output totals differ")

	// ErrExhausted is the error form of the Exhausted outcome.
	ErrExhausted = errors.New("balancer: search space exhausted without a solution")

	// ErrTimeout is the error form of the Timeout outcome.
	ErrTimeout = errors.New("balancer: search gave up before a solution was found")
)

// Problem is the immutable input of one Solve call.
type Problem struct {
	Initial  state.State
	Target   state.State
	Capacity rate.Rate
}

// NewProblem copies and canonicalizes both sides and validates them.
func NewProblem(initial, target []rate.Rate, capacity rate.Rate) (*Problem, error) {
	p := &Problem{
		Initial:  state.New(initial...),
		Target:   state.New(target...),
		Capacity: capacity,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks that p can be searched. Balance of totals is not checked
// here; it is an outcome of Solve.
func (p *Problem) Validate() error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: nil problem", ErrInvalidProblem)
	case p.Initial.Len() == 0:
		return fmt.Errorf("%w: no initial values", ErrInvalidProblem)
	case p.Target.Len() == 0:
		return fmt.Errorf("%w: no target values", ErrInvalidProblem)
	case p.Initial.Contains(0) || p.Target.Contains(0):
		return fmt.Errorf("%w: zero rate", ErrInvalidProblem)
	case p.Capacity == 0:
		return fmt.Errorf("%w: zero capacity", ErrInvalidProblem)
	}
	if _, err := p.Initial.Total(); err != nil {
		return fmt.Errorf("%w: initial total: %w", ErrInvalidProblem, err)
	}
	if _, err := p.Target.Total(); err != nil {
		return fmt.Errorf("%w: target total: %w", ErrInvalidProblem, err)
	}

	return nil
}

// Balanced reports whether initial and target carry the same total flow.
// Totals that overflow are never balanced.
func (p *Problem) Balanced() bool {
	in, err := p.Initial.Total()
	if err != nil {
		return false
	}
	out, err := p.Target.Total()
	if err != nil {
		return false
	}

	return in == out
}

// GCD returns the gate divisor shared by every value of both endpoints.
func (p *Problem) GCD() rate.Rate {
	return rate.GCD(rate.GCDOf(p.Target), rate.GCDOf(p.Initial))
}

// String renders p canonically, e.g. "in (2) out (1, 1) max 1200".
func (p *Problem) String() string {
	return fmt.Sprintf("in %s out %s max %s", p.Initial, p.Target, p.Capacity)
}

// Reason classifies the outcome of Solve.
type Reason uint8

const (
	// Solved means Result.Steps leads from the initial to the target state.
	Solved Reason = iota
	// Unbalanced means the totals differ; nothing was searched.
	Unbalanced
	// Exhausted means no plan exists within the capacity ceiling.
	Exhausted
	// Timeout means the search gave up before the frontiers met.
	Timeout
)

// String returns the lower-case outcome name.
func (r Reason) String() string {
	switch r {
	case Solved:
		return "solved"
	case Unbalanced:
		return "unbalanced"
	case Exhausted:
		return "exhausted"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// Step is one operation of a plan and the state it produces.
type Step struct {
	Op    operation.Operation `json:"op"`
	State state.State         `json:"state"`
}

// Stats are the diagnostics of one search.
//
// Generated counts every admissible candidate produced by the generators,
// Examined counts frontier entries taken for expansion.
type Stats struct {
	Generated uint64
	Examined  uint64
	Elapsed   time.Duration
}

// Result is the immutable outcome of a Solve call.
type Result struct {
	RunID   string
	Reason  Reason
	Steps   []Step
	Meeting state.State
	Stats   Stats
}

// Solved reports whether r holds a plan.
func (r *Result) Solved() bool { return r.Reason == Solved }

// Err maps a failure outcome to its sentinel error; nil when solved.
func (r *Result) Err() error {
	switch r.Reason {
	case Solved:
		return nil
	case Unbalanced:
		return ErrUnbalanced
	case Exhausted:
		return ErrExhausted
	default:
		return ErrTimeout
	}
}

// Cost returns the summed cost of all steps.
func (r *Result) Cost() int64 {
	var total int64
	for _, s := range r.Steps {
		total += s.Op.Cost()
	}

	return total
}

// Recorder receives one observation per Solve call.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveSolve(reason Reason, stats Stats)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSolve(Reason, Stats) {}

// Option configures Solve via functional arguments. An invalid Option is
// recorded and surfaced as ErrOptionViolation when Solve is invoked.
type Option func(*Options)

// Options holds the tunables of one search.
type Options struct {
	// Timeout bounds wall-clock time on top of the caller's context.
	// Zero disables the extra bound.
	Timeout time.Duration

	// MaxExpansions, if > 0, stops the search (as Timeout) after that many
	// frontier entries were examined.
	MaxExpansions uint64

	// MaxCandidates, if > 0, stops the search (as Timeout) when a single
	// expansion would enumerate more candidates.
	MaxCandidates int

	// Heuristic orders both frontiers.
	Heuristic heuristic.Func

	// Logger receives run-level records.
	Logger *slog.Logger

	// Recorder receives the final outcome and stats.
	Recorder Recorder

	// Clock measures elapsed time.
	Clock func() time.Time

	err error
}

// DefaultOptions returns Options with:
//   - Timeout 30s, no expansion cap
//   - DefaultMaxCandidates per expansion
//   - heuristic.Estimate
//   - a discarding logger and no-op recorder
//   - time.Now as clock
func DefaultOptions() Options {
	return Options{
		Timeout:       DefaultTimeout,
		MaxCandidates: DefaultMaxCandidates,
		Heuristic:     heuristic.Estimate,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Recorder:      nopRecorder{},
		Clock:         time.Now,
	}
}

// WithTimeout sets the wall-clock budget. d == 0 disables it; d < 0 is an
// option violation.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d < 0 {
			o.err = fmt.Errorf("%w: negative timeout %s", ErrOptionViolation, d)
			return
		}
		o.Timeout = d
	}
}

// WithMaxExpansions caps the number of examined entries. n == 0 disables
// the cap.
func WithMaxExpansions(n uint64) Option {
	return func(o *Options) {
		o.MaxExpansions = n
	}
}

// WithMaxCandidates caps the candidates one expansion may enumerate.
// n == 0 disables the cap; n < 0 is an option violation.
func WithMaxCandidates(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: negative candidate cap %d", ErrOptionViolation, n)
			return
		}
		o.MaxCandidates = n
	}
}

// WithHeuristic replaces the frontier ordering estimate.
func WithHeuristic(fn heuristic.Func) Option {
	return func(o *Options) {
		if fn != nil {
			o.Heuristic = fn
		}
	}
}

// WithLogger sets the logger for run-level records.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(o *Options) {
		if r != nil {
			o.Recorder = r
		}
	}
}

// WithClock sets the time source used for Stats.Elapsed.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Clock = now
		}
	}
}
