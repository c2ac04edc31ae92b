package runner

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm"
)

// Runner executes a machine graph for one stream of frames.
type Runner struct {
	start   *fsm.State
	current *fsm.State
	status  Status

	logger  *slog.Logger
	metrics *Metrics
	hooks   domain.LifecycleHooks
	label   string

	skipPrepare bool
	prepared    bool
}

// New creates a runner positioned at start. Unless WithoutPrepare is given,
// every reachable callable is prepared before New returns and a preparation
// failure is returned as is.
func New(start *fsm.State, opts ...Option) (*Runner, error) {
	r := &Runner{
		start:   start,
		current: start,
		status:  Idle,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.label != "" {
		r.logger = r.logger.With("runner", r.label)
	}

	if r.skipPrepare {
		return r, nil
	}
	if err := r.Start(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

// Start prepares an Idle runner and moves it to Running.
// It is a no-op on a Running runner.
func (r *Runner) Start(ctx context.Context) error {
	switch r.status {
	case Running:
		return nil
	case Faulted:
		return domain.ErrRunnerFaulted
	}

	if !r.prepared {
		if err := r.prepareAll(ctx); err != nil {
			r.logger.Error("prepare failed", "err", err)
			return err
		}
		r.prepared = true
	}

	r.status = Running
	r.logger.Debug("runner started", "state", stateName(r.current))
	return nil
}

func (r *Runner) prepareAll(ctx context.Context) error {
	for s := range fsm.BFS(r.start) {
		if err := s.PrepareAll(ctx); err != nil {
			return err
		}
		r.logger.Debug("state prepared", "state", s.Name)
		if r.hooks.OnPrepare != nil {
			r.hooks.OnPrepare(ctx, &domain.PrepareEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPrepare},
				State:     s.Name,
			})
		}
	}
	return nil
}

// Feed steps the current state with frame and returns the instruction to
// emit. Errors from callables are returned without changing the current
// state. Feeding a runner whose current state is nil faults it.
func (r *Runner) Feed(ctx context.Context, frame domain.Frame) (domain.Instruction, error) {
	switch r.status {
	case Idle:
		return domain.Instruction{}, domain.ErrNotPrepared
	case Faulted:
		return domain.Instruction{}, domain.ErrRunnerFaulted
	}

	from := r.current
	if from == nil {
		r.status = Faulted
		r.logger.Error("runner faulted", "frame", frame.ID, "err", domain.ErrNullCurrentState)
		return domain.Instruction{}, domain.ErrNullCurrentState
	}

	started := time.Now()
	res, err := from.StepDetailed(ctx, frame)
	elapsed := time.Since(started)

	r.metrics.observeFrame(from.Name, elapsed, err)
	if r.hooks.OnFrame != nil {
		r.hooks.OnFrame(ctx, &domain.FrameEvent{
			EventBase: domain.EventBase{Timestamp: started, Type: domain.EventFrame},
			FrameID:   frame.ID,
			State:     from.Name,
			Duration:  elapsed,
			Err:       err,
		})
	}
	if err != nil {
		r.logger.Warn("step failed", "state", from.Name, "frame", frame.ID, "err", err)
		return domain.Instruction{}, &domain.StateError{Op: "step", State: from.Name, Err: err}
	}

	r.current = res.Next
	if res.Transition != nil {
		to := stateName(res.Next)
		r.logger.Debug("transition",
			"from", from.Name,
			"to", to,
			"transition", res.Transition.Name,
			"frame", frame.ID,
		)
		r.metrics.observeTransition(from.Name, to)
		if r.hooks.OnTransition != nil {
			r.hooks.OnTransition(ctx, &domain.TransitionEvent{
				EventBase:   domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransition},
				From:        from.Name,
				To:          to,
				Transition:  res.Transition.Name,
				Instruction: res.Instruction,
			})
		}
	}
	return res.Instruction, nil
}

// Reset moves the runner back to its start state and clears a fault.
// A runner that was never prepared stays Idle.
func (r *Runner) Reset() {
	r.current = r.start
	if r.prepared {
		r.status = Running
	} else {
		r.status = Idle
	}
}

// Current returns the current state, which is nil once a transition without
// a next state was taken.
func (r *Runner) Current() *fsm.State {
	return r.current
}

// Start state of the runner.
func (r *Runner) StartState() *fsm.State {
	return r.start
}

func (r *Runner) Status() Status {
	return r.status
}

func stateName(s *fsm.State) string {
	if s == nil {
		return ""
	}
	return s.Name
}
