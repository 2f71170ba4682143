package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/flowbalance/balancer"
	"github.com/katalvlaran/flowbalance/config"
	"github.com/katalvlaran/flowbalance/metrics"
	"github.com/katalvlaran/flowbalance/query"
	"github.com/katalvlaran/flowbalance/rate"
	"github.com/katalvlaran/flowbalance/store"
)

const version = "0.3.0"

// app carries the state shared by every subcommand of one invocation.
type app struct {
	// global flags
	cfgPath     string
	logLevel    string
	cachePath   string
	metricsAddr string

	stdin io.Reader

	cfg     config.Config
	log     *slog.Logger
	reg     *prometheus.Registry
	rec     *metrics.Recorder
	cache   *store.Store
	metrics *http.Server
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	a := &app{stdin: stdin}
	root := &cobra.Command{
		Use:   "flowbalance",
		Short: "Plan split and merge operations that rebalance flows",
		Long: `flowbalance searches for a low-cost sequence of splits (cost 1) and
merges (cost 3) that turns a multiset of input rates into a multiset of
output rates without any channel exceeding the max belt. Plans are found
by a bidirectional best-first search and are not guaranteed to be the
cheapest possible.

Rates are decimals with up to 8 fractional digits. RATExCOUNT stands for
COUNT copies of RATE.

Examples:
  flowbalance solve --in 2,2 --out 1x4           # split two channels four ways
  flowbalance solve --in 45 --out 15x3 --json    # machine readable plan
  flowbalance repl                               # -in 2 -out 1 1, -q to quit
  flowbalance batch problems.yaml --jobs 8       # many problems at once`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "YAML settings file")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	pf.StringVar(&a.cachePath, "cache", "", "SQLite plan cache file (overrides config)")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address while running")

	root.AddCommand(
		newSolveCmd(a),
		newReplCmd(a),
		newBatchCmd(a),
		newConfigCmd(a),
	)

	return root
}

// run wraps a RunE so that shared services are released even when the
// command fails.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() { err = errors.Join(err, a.teardown(cmd.Context())) }()

		return fn(cmd, args)
	}
}

// setup loads the configuration, applies flag overrides and starts the
// shared services.
func (a *app) setup(cmd *cobra.Command) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(err, a.teardown(cmd.Context()))
		}
	}()

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("cache") {
		cfg.CachePath = a.cachePath
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = a.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.log, err = cfg.NewLogger(cmd.ErrOrStderr()); err != nil {
		return err
	}

	a.reg = prometheus.NewRegistry()
	a.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if a.rec, err = metrics.NewRecorder(a.reg); err != nil {
		return err
	}

	if cfg.CachePath != "" {
		if a.cache, err = store.Open(cfg.CachePath); err != nil {
			return fmt.Errorf("open plan cache: %w", err)
		}
		a.log.Debug("plan cache opened", slog.String("path", cfg.CachePath))
	}

	if cfg.MetricsAddr != "" {
		if err := a.serveMetrics(cfg.MetricsAddr); err != nil {
			return err
		}
	}

	return nil
}

func (a *app) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{Registry: a.reg}))
	a.metrics = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metrics.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server stopped", slog.Any("error", err))
		}
	}()
	a.log.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	return nil
}

func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.metrics != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		errs = append(errs, a.metrics.Shutdown(shutdownCtx))
		a.metrics = nil
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
		a.cache = nil
	}

	return errors.Join(errs...)
}

// parser returns a query parser defaulting to the configured max belt.
func (a *app) parser() (query.Parser, error) {
	mb, err := a.cfg.Capacity()
	if err != nil {
		return query.Parser{}, err
	}

	return query.Parser{MaxBelt: mb}, nil
}

// solve answers p from the plan cache when possible and runs the search
// otherwise. Solved results are written back to the cache.
func (a *app) solve(ctx context.Context, p *balancer.Problem, timeout time.Duration) (*balancer.Result, bool, error) {
	if a.cache != nil {
		plan, ok, err := a.cache.Get(ctx, p)
		if err != nil {
			a.log.Warn("plan cache lookup failed", slog.Any("error", err))
		}
		a.rec.ObserveCache(ok)
		if ok {
			a.log.Debug("plan cache hit", slog.String("problem", p.String()))
			return plan.Result(), true, nil
		}
	}

	res, err := balancer.Solve(ctx, p,
		balancer.WithTimeout(timeout),
		balancer.WithLogger(a.log),
		balancer.WithRecorder(a.rec),
	)
	if err != nil {
		return nil, false, err
	}
	if a.cache != nil && res.Solved() {
		if err := a.cache.Put(ctx, p, res); err != nil {
			a.log.Warn("plan cache write failed", slog.Any("error", err))
		}
	}

	return res, false, nil
}

// maxBelt parses an optional --max-belt flag value.
func maxBelt(s string) (rate.Rate, error) {
	if s == "" {
		return 0, nil
	}
	mb, err := rate.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("--max-belt: %w", err)
	}

	return mb, nil
}
