package runner

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors updated by runners.
// A nil *Metrics records nothing.
type Metrics struct {
	frames       *prometheus.CounterVec
	failures     *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

// NewMetrics creates the runner collectors and registers them on reg.
// Collectors already registered on reg are reused, so every runner of a
// process can share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wca",
			Subsystem: "runner",
			Name:      "frames_total",
			Help:      "Frames fed to a state.",
		}, []string{"state"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wca",
			Subsystem: "runner",
			Name:      "step_errors_total",
			Help:      "Steps that failed in a processor or predicate.",
		}, []string{"state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wca",
			Subsystem: "runner",
			Name:      "transitions_total",
			Help:      "Transitions taken.",
		}, []string{"from", "to"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wca",
			Subsystem: "runner",
			Name:      "step_duration_seconds",
			Help:      "Time spent running processors and predicates for one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"state"}),
	}

	var err error
	if m.frames, err = register(reg, m.frames); err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	if m.transitions, err = register(reg, m.transitions); err != nil {
		return nil, err
	}
	if m.stepDuration, err = register(reg, m.stepDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observeFrame(state string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(state).Inc()
	m.stepDuration.WithLabelValues(state).Observe(elapsed.Seconds())
	if err != nil {
		m.failures.WithLabelValues(state).Inc()
	}
}

func (m *Metrics) observeTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}
