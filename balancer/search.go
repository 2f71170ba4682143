package balancer

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/flowbalance/neighbors"
	"github.com/katalvlaran/flowbalance/operation"
	"github.com/katalvlaran/flowbalance/state"
)

var tracer = otel.Tracer("flowbalance/balancer")

// Solve searches for a plan turning p.Initial into p.Target.
//
// Returns:
//
//   - res: always non-nil when err is nil; res.Reason tells whether a plan was
//     found and, if not, why (Unbalanced, Exhausted, Timeout).
//   - err: ErrInvalidProblem or ErrOptionViolation for bad input, or
//     operation.ErrArity / ErrBrokenPath if an internal invariant broke.
//
// Preconditions and validation (in order):
//  1. Options must be valid (ErrOptionViolation).
//  2. p must pass Problem.Validate (ErrInvalidProblem).
//  3. Totals must match, else Reason Unbalanced with no expansion.
//  4. No endpoint value may exceed p.Capacity, else Reason Exhausted with no
//     expansion.
//
// The deadline (ctx plus Options.Timeout) is checked once per loop
// iteration and polled inside long expansions, which are also bounded by
// Options.MaxCandidates. Either limit ends the search as Timeout.
func Solve(ctx context.Context, p *Problem, opts ...Option) (*Result, error) {
	// 1) Build and validate Options
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	// 2) Validate the problem, then search a canonical copy so that
	// hand-built states compare and intern consistently.
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = &Problem{
		Initial:  state.New(p.Initial...),
		Target:   state.New(p.Target...),
		Capacity: p.Capacity,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "balancer.Solve",
		trace.WithAttributes(
			attribute.String("balancer.run_id", runID),
			attribute.Int("balancer.inputs", p.Initial.Len()),
			attribute.Int("balancer.outputs", p.Target.Len()),
			attribute.String("balancer.capacity", p.Capacity.String()),
		),
	)
	defer span.End()

	log := cfg.Logger.With(slog.String("run_id", runID))
	log.Debug("search started",
		slog.String("initial", p.Initial.String()),
		slog.String("target", p.Target.String()),
		slog.String("capacity", p.Capacity.String()),
	)

	cfg.Logger = log
	r := newRunner(p, cfg)
	res := &Result{RunID: runID}

	switch {
	// 3) Totals must match before any frontier work.
	case !p.Balanced():
		res.Reason = Unbalanced
		log.Info("unbalanced totals",
			slog.String("in", p.Initial.Sum().String()),
			slog.String("out", p.Target.Sum().String()),
		)

	// 4) An endpoint above the ceiling can never appear in a valid plan.
	case p.Initial.Max() > p.Capacity || p.Target.Max() > p.Capacity:
		res.Reason = Exhausted
		log.Info("endpoint exceeds capacity", slog.String("capacity", p.Capacity.String()))

	default:
		reason, err := r.run(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Error("search aborted", slog.Any("error", err))

			return nil, err
		}
		res.Reason = reason
		if reason == Solved {
			steps, err := r.buildPath()
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())

				return nil, err
			}
			res.Steps = steps
			res.Meeting = r.states.state(r.meeting)
		}
	}

	res.Stats = r.stats
	res.Stats.Elapsed = cfg.Clock().Sub(r.start)
	cfg.Recorder.ObserveSolve(res.Reason, res.Stats)

	span.SetAttributes(
		attribute.String("balancer.reason", res.Reason.String()),
		attribute.Int64("balancer.examined", int64(res.Stats.Examined)),
		attribute.Int64("balancer.generated", int64(res.Stats.Generated)),
	)
	if res.Solved() {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, res.Reason.String())
	}
	log.Info("search finished",
		slog.String("reason", res.Reason.String()),
		slog.Int("steps", len(res.Steps)),
		slog.Uint64("generated", res.Stats.Generated),
		slog.Uint64("examined", res.Stats.Examined),
		slog.Duration("elapsed", res.Stats.Elapsed),
	)

	return res, nil
}

// link records how a state was first reached at its best known cost.
// Only one of fwd/rev is meaningful, depending on the direction.
type link struct {
	parent handle
	fwd    operation.Operation
	rev    operation.ReverseOperation
}

// side holds the bookkeeping of one search direction.
type side struct {
	frontier frontier
	cost     []int64 // indexed by handle; math.MaxInt64 = unseen
	parent   []link  // indexed by handle; parent == noHandle for the root
	goal     state.State
}

func (s *side) costOf(h handle) (int64, bool) {
	if int(h) >= len(s.cost) || s.cost[h] == math.MaxInt64 {
		return 0, false
	}

	return s.cost[h], true
}

// grow extends the tables so that every handle below n is addressable.
func (s *side) grow(n int) {
	for len(s.cost) < n {
		s.cost = append(s.cost, math.MaxInt64)
		s.parent = append(s.parent, link{parent: noHandle})
	}
}

// runner holds the mutable state for a single Solve execution.
type runner struct {
	problem *Problem
	options Options
	limits  neighbors.Limits
	states  *interner
	fwd     *side
	bwd     *side
	initial handle
	target  handle
	meeting handle
	best    int64
	seq     uint64
	stats   Stats
	start   time.Time
}

func newRunner(p *Problem, cfg Options) *runner {
	return &runner{
		problem: p,
		options: cfg,
		limits: neighbors.Limits{
			GCD:           p.GCD(),
			Capacity:      p.Capacity,
			MaxCandidates: cfg.MaxCandidates,
		},
		states:  newInterner(),
		fwd:     &side{goal: p.Target},
		bwd:     &side{goal: p.Initial},
		meeting: noHandle,
		best:    math.MaxInt64,
		start:   cfg.Clock(),
	}
}

// seed interns both endpoints and pushes each onto its own frontier at
// cost 0.
func (r *runner) seed() {
	r.initial = r.states.intern(r.problem.Initial)
	r.target = r.states.intern(r.problem.Target)
	r.relax(r.fwd, r.initial, 0, link{parent: noHandle})
	r.relax(r.bwd, r.target, 0, link{parent: noHandle})
}

// run is the main loop. It alternates between the two frontiers until they
// meet, both run dry, or the deadline passes.
func (r *runner) run(ctx context.Context) (Reason, error) {
	r.limits.Stop = func() bool { return ctx.Err() != nil }
	r.seed()

	forward := true
	for r.fwd.frontier.Len() > 0 || r.bwd.frontier.Len() > 0 {
		// 1) deadline check, once per iteration
		select {
		case <-ctx.Done():
			return Timeout, nil
		default:
		}
		if r.options.MaxExpansions > 0 && r.stats.Examined >= r.options.MaxExpansions {
			return Timeout, nil
		}

		// 2) strict round robin; an empty side yields its turn
		active, opposite := r.fwd, r.bwd
		if !forward {
			active, opposite = r.bwd, r.fwd
		}
		if active.frontier.Len() == 0 {
			active, opposite = opposite, active
		}
		forward = !forward

		item := heap.Pop(&active.frontier).(*frontierItem)
		if item.cost > active.cost[item.id] {
			continue // stale entry, a cheaper one was pushed later
		}
		r.stats.Examined++

		// 3) meeting check against the opposite cost table
		if there, ok := opposite.costOf(item.id); ok {
			if total := item.cost + there; total < r.best {
				r.best = total
				r.meeting = item.id
			}
		}

		// 4) expansion
		var err error
		if active == r.fwd {
			err = r.expandForward(item)
		} else {
			err = r.expandBackward(item)
		}
		switch {
		case errors.Is(err, neighbors.ErrInterrupted), errors.Is(err, neighbors.ErrTooManyCandidates):
			r.options.Logger.Debug("expansion abandoned", slog.Any("error", err))
			if r.meeting != noHandle {
				return Solved, nil
			}
			return Timeout, nil
		case err != nil:
			return Exhausted, err
		}

		// 5) first meeting wins
		if r.meeting != noHandle {
			return Solved, nil
		}
	}

	return Exhausted, nil
}

func (r *runner) expandForward(item *frontierItem) error {
	moves, err := neighbors.Forward(r.states.state(item.id), r.limits)
	if err != nil {
		return err
	}
	r.stats.Generated += uint64(len(moves))
	for _, m := range moves {
		next := r.states.intern(m.State)
		r.relax(r.fwd, next, item.cost+m.Op.Cost(), link{parent: item.id, fwd: m.Op})
	}

	return nil
}

func (r *runner) expandBackward(item *frontierItem) error {
	moves, err := neighbors.Backward(r.states.state(item.id), r.limits)
	if err != nil {
		return err
	}
	r.stats.Generated += uint64(len(moves))
	for _, m := range moves {
		prev := r.states.intern(m.State)
		r.relax(r.bwd, prev, item.cost+m.Op.Cost(), link{parent: item.id, rev: m.Op})
	}

	return nil
}

// relax records cost and parent for h on side s if cost improves on the best
// known one, and pushes a new frontier entry for it.
func (r *runner) relax(s *side, h handle, cost int64, via link) {
	s.grow(r.states.len())
	if cost >= s.cost[h] {
		return
	}
	s.cost[h] = cost
	s.parent[h] = via

	estimate := r.options.Heuristic(r.states.state(h), s.goal, r.limits.GCD)
	r.seq++
	heap.Push(&s.frontier, &frontierItem{
		id:       h,
		cost:     cost,
		priority: cost + estimate,
		seq:      r.seq,
	})
}
