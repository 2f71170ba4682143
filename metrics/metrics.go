// Package metrics exports balancer outcomes as Prometheus collectors.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/flowbalance/balancer"
)

const namespace = "flowbalance"

// ErrRegister is returned when a collector cannot be registered.
var ErrRegister = errors.New("metrics: register collector")

// Recorder implements balancer.Recorder.
type Recorder struct {
	solves    *prometheus.CounterVec
	generated prometheus.Counter
	examined  prometheus.Counter
	duration  prometheus.Histogram
	cache     *prometheus.CounterVec
}

var _ balancer.Recorder = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them on reg.
// A nil reg selects prometheus.DefaultRegisterer.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solve_total",
			Help:      "Solve calls by outcome.",
		}, []string{"reason"}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "states_generated_total",
			Help:      "Candidate states produced by the neighbor generators.",
		}),
		examined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "states_examined_total",
			Help:      "Frontier entries taken for expansion.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Wall time of one Solve call.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Plan cache lookups by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{r.solves, r.generated, r.examined, r.duration, r.cache} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRegister, err)
		}
	}

	return r, nil
}

// ObserveSolve records one finished search.
func (r *Recorder) ObserveSolve(reason balancer.Reason, stats balancer.Stats) {
	r.solves.WithLabelValues(reason.String()).Inc()
	r.generated.Add(float64(stats.Generated))
	r.examined.Add(float64(stats.Examined))
	r.duration.Observe(stats.Elapsed.Seconds())
}

// ObserveCache records one plan cache lookup.
func (r *Recorder) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(result).Inc()
}
