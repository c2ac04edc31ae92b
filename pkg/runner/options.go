package runner

import (
	"log/slog"

	"github.com/aretw0/wca/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics records frames, transitions and step latency.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithoutPrepare leaves the runner Idle after New.
// Call Start before feeding frames.
func WithoutPrepare() Option {
	return func(r *Runner) {
		r.skipPrepare = true
	}
}

// WithPrepared marks the graph as already prepared, so the runner starts
// Running without preparing callables again. Runners sharing one graph use
// it after the first runner prepared it.
func WithPrepared() Option {
	return func(r *Runner) {
		r.prepared = true
	}
}

// WithLabel names the runner in logs, e.g. with a session ID.
func WithLabel(label string) Option {
	return func(r *Runner) {
		r.label = label
	}
}
