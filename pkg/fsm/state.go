package fsm

import (
	"context"

	"github.com/aretw0/wca/pkg/domain"
)

// State is a node of the machine graph.
type State struct {
	Name        string
	Processors  []*Processor
	Transitions []*Transition
}

// NewState returns a state with no processors and no transitions.
func NewState(name string) *State {
	return &State{Name: name}
}

// AddProcessor appends processors in evaluation order.
func (s *State) AddProcessor(ps ...*Processor) *State {
	s.Processors = append(s.Processors, ps...)
	return s
}

// AddTransition appends transitions in priority order.
func (s *State) AddTransition(ts ...*Transition) *State {
	s.Transitions = append(s.Transitions, ts...)
	return s
}

// RunProcessors builds the application state for frame. Processor outputs
// are merged in declared order and later keys overwrite earlier ones.
func (s *State) RunProcessors(ctx context.Context, frame domain.Frame) (domain.AppState, error) {
	app := domain.NewAppState(frame)
	for _, p := range s.Processors {
		out, err := p.Process(ctx, frame)
		if err != nil {
			return nil, err
		}
		app.Merge(out)
	}
	return app, nil
}

// ResolveTransition returns the first transition that holds for app, or nil.
func (s *State) ResolveTransition(ctx context.Context, app domain.AppState) (*Transition, error) {
	for _, t := range s.Transitions {
		ok, err := t.Holds(ctx, app)
		if err != nil {
			return nil, err
		}
		if ok {
			return t, nil
		}
	}
	return nil, nil
}

// Step feeds one frame through the state. It returns the state to move to
// and the instruction to emit. When no transition holds it returns s and an
// empty instruction. The graph is never modified.
func (s *State) Step(ctx context.Context, frame domain.Frame) (*State, domain.Instruction, error) {
	next, _, inst, err := s.step(ctx, frame)
	return next, inst, err
}

func (s *State) step(ctx context.Context, frame domain.Frame) (*State, *Transition, domain.Instruction, error) {
	app, err := s.RunProcessors(ctx, frame)
	if err != nil {
		return nil, nil, domain.Instruction{}, err
	}
	t, err := s.ResolveTransition(ctx, app)
	if err != nil {
		return nil, nil, domain.Instruction{}, err
	}
	if t == nil {
		return s, nil, domain.Instruction{}, nil
	}
	return t.NextState, t, t.Instruction, nil
}

// StepResult describes a taken step in detail.
type StepResult struct {
	Next        *State
	Transition  *Transition // nil when nothing matched
	Instruction domain.Instruction
}

// StepDetailed is Step that also returns the transition that fired.
func (s *State) StepDetailed(ctx context.Context, frame domain.Frame) (StepResult, error) {
	next, t, inst, err := s.step(ctx, frame)
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{Next: next, Transition: t, Instruction: inst}, nil
}

// PrepareAll prepares every processor of the state, then every predicate of
// its transitions, in declared order. The first failure aborts.
func (s *State) PrepareAll(ctx context.Context) error {
	for _, p := range s.Processors {
		if err := p.Prepare(ctx); err != nil {
			return &domain.StateError{Op: "prepare", State: s.Name, Err: err}
		}
	}
	for _, t := range s.Transitions {
		for _, p := range t.Predicates {
			if err := p.Prepare(ctx); err != nil {
				return &domain.StateError{Op: "prepare", State: s.Name, Err: err}
			}
		}
	}
	return nil
}
