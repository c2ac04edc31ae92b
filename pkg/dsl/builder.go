package dsl

import (
	"fmt"

	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm"
)

// Builder manages the graph construction.
type Builder struct {
	names  *fsm.Names
	states map[string]*StateBuilder
	links  []link
}

// link is a transition waiting for its target to be resolved.
type link struct {
	from   string
	t      *fsm.Transition
	target string
}

// Option configures a Builder.
type Option func(*Builder)

// WithNames sets the generator used for omitted names.
func WithNames(n *fsm.Names) Option {
	return func(b *Builder) {
		b.names = n
	}
}

// New creates a new graph builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		states: make(map[string]*StateBuilder),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.names == nil {
		b.names = fsm.NewNames()
	}
	return b
}

// State adds a state to the graph. An empty name is replaced by a generated
// one. If the state already exists, it returns the existing builder.
func (b *Builder) State(name string) *StateBuilder {
	if name == "" {
		name = b.names.Next(fsm.KindState)
	}
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{
		state:   fsm.NewState(name),
		builder: b,
	}
	b.states[name] = sb
	return sb
}

// Build links every transition to its target and returns the state named
// start. Transitions declared with an empty target keep a nil next state.
func (b *Builder) Build(start string) (*fsm.State, error) {
	sb, ok := b.states[start]
	if !ok {
		return nil, fmt.Errorf("start state %q: %w", start, domain.ErrUnresolvedStateReference)
	}

	for _, l := range b.links {
		if l.target == "" {
			l.t.NextState = nil
			continue
		}
		target, ok := b.states[l.target]
		if !ok {
			return nil, &domain.StateError{
				Op:    "build",
				State: l.from,
				Err:   fmt.Errorf("transition %q to %q: %w", l.t.Name, l.target, domain.ErrUnresolvedStateReference),
			}
		}
		l.t.NextState = target.state
	}

	return sb.state, nil
}
