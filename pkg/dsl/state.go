package dsl

import (
	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/fsm"
)

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	state   *fsm.State
	builder *Builder
}

// Name returns the state name.
func (s *StateBuilder) Name() string {
	return s.state.Name
}

// Process appends a processor with a generated name.
func (s *StateBuilder) Process(c callable.Processor) *StateBuilder {
	return s.ProcessNamed("", c)
}

// ProcessNamed appends a processor called name.
func (s *StateBuilder) ProcessNamed(name string, c callable.Processor) *StateBuilder {
	if name == "" {
		name = s.builder.names.Next(fsm.KindProcessor)
	}
	s.state.AddProcessor(fsm.NewProcessor(name, c))
	return s
}

// On begins a transition to the state named target. Transitions are
// evaluated in the order they are begun.
func (s *StateBuilder) On(target string) *TransitionBuilder {
	t := fsm.NewTransition(s.builder.names.Next(fsm.KindTransition), nil)
	s.state.AddTransition(t)
	s.builder.links = append(s.builder.links, link{from: s.state.Name, t: t, target: target})
	return &TransitionBuilder{t: t, state: s}
}
