package fsm

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm/wirepb"
)

// Machine pairs a start state with the label stored in the binary format.
type Machine struct {
	Name  string
	Start *State
}

// Encode serializes the graph reachable from start. It fails without
// producing output when state names collide, when a callable class is not
// registered in regs, or when a transition has no next state.
// A nil regs is reported as domain.ErrUnknownCallable.
func Encode(name string, start *State, regs *callable.Registries) ([]byte, error) {
	msg, err := ToWire(name, start, regs)
	if err != nil {
		return nil, err
	}
	return msg.Marshal(), nil
}

// EncodeMachine is Encode for a Machine.
func EncodeMachine(m Machine, regs *callable.Registries) ([]byte, error) {
	return Encode(m.Name, m.Start, regs)
}

// Decode rebuilds a graph from data and returns its start state.
func Decode(data []byte, regs *callable.Registries) (*State, error) {
	m, err := DecodeMachine(data, regs)
	if err != nil {
		return nil, err
	}
	return m.Start, nil
}

// DecodeMachine is Decode that also returns the machine label.
func DecodeMachine(data []byte, regs *callable.Registries) (*Machine, error) {
	var msg wirepb.StateMachine
	if err := msg.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("decode machine: %w", err)
	}
	return FromWire(&msg, regs)
}

// ToWire converts the graph reachable from start into its wire message.
func ToWire(name string, start *State, regs *callable.Registries) (*wirepb.StateMachine, error) {
	if start == nil {
		return nil, &domain.StateError{Op: "encode", Err: fmt.Errorf("%w: no start state", domain.ErrUnresolvedStateReference)}
	}
	if err := checkRegistries(regs); err != nil {
		return nil, &domain.StateError{Op: "encode", Err: err}
	}
	states, err := Collect(start)
	if err != nil {
		return nil, err
	}
	known := make(map[*State]struct{}, len(states))
	for _, s := range states {
		known[s] = struct{}{}
	}

	msg := &wirepb.StateMachine{Name: name, StartState: start.Name}
	for _, s := range states {
		ws, err := encodeState(s, known, regs)
		if err != nil {
			return nil, &domain.StateError{Op: "encode", State: s.Name, Err: err}
		}
		msg.States = append(msg.States, ws)
	}
	return msg, nil
}

func encodeState(s *State, known map[*State]struct{}, regs *callable.Registries) (*wirepb.State, error) {
	ws := &wirepb.State{Name: s.Name}

	for _, p := range s.Processors {
		class, args, err := encodeCallable(regs.Processors.Require, p.Callable, p.Name)
		if err != nil {
			return nil, err
		}
		ws.Processors = append(ws.Processors, &wirepb.Processor{Name: p.Name, CallableName: class, CallableArgs: args})
	}

	for _, t := range s.Transitions {
		if t.NextState == nil {
			return nil, fmt.Errorf("transition %q: %w: no next state", t.Name, domain.ErrUnresolvedStateReference)
		}
		if _, ok := known[t.NextState]; !ok {
			return nil, fmt.Errorf("transition %q: %w: %q", t.Name, domain.ErrUnresolvedStateReference, t.NextState.Name)
		}

		wt := &wirepb.Transition{Name: t.Name, NextState: t.NextState.Name}
		for _, p := range t.Predicates {
			class, args, err := encodeCallable(regs.Predicates.Require, p.Callable, p.Name)
			if err != nil {
				return nil, fmt.Errorf("transition %q: %w", t.Name, err)
			}
			wt.Predicates = append(wt.Predicates, &wirepb.TransitionPredicate{Name: p.Name, CallableName: class, CallableArgs: args})
		}
		if !t.Instruction.IsEmpty() || t.Instruction.Name != "" {
			wt.Instruction = &wirepb.Instruction{
				Name:  t.Instruction.Name,
				Audio: t.Instruction.Audio,
				Image: t.Instruction.Image,
				Video: t.Instruction.Video,
			}
		}
		ws.Transitions = append(ws.Transitions, wt)
	}
	return ws, nil
}

func encodeCallable(require func(string) error, c callable.Callable, name string) (string, string, error) {
	if c == nil {
		return "", "", fmt.Errorf("%q: %w: no callable", name, domain.ErrUnknownCallable)
	}
	class := c.CallableName()
	if err := require(class); err != nil {
		return "", "", err
	}
	args := c.Args()
	if args == nil {
		args = callable.Args{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return "", "", fmt.Errorf("%q: %w: %v", name, domain.ErrInvalidArguments, err)
	}
	return class, string(raw), nil
}

// FromWire rebuilds a graph from its wire message. States are created
// first and linked by name afterwards, so transitions may reference states
// declared later in the message.
func FromWire(msg *wirepb.StateMachine, regs *callable.Registries) (*Machine, error) {
	if err := checkRegistries(regs); err != nil {
		return nil, &domain.StateError{Op: "decode", Err: err}
	}
	byName := make(map[string]*State, len(msg.States))
	for _, ws := range msg.States {
		if _, dup := byName[ws.Name]; dup {
			return nil, &domain.StateError{Op: "decode", State: ws.Name, Err: domain.ErrDuplicateStateName}
		}
		byName[ws.Name] = NewState(ws.Name)
	}

	for _, ws := range msg.States {
		if err := decodeState(byName[ws.Name], ws, byName, regs); err != nil {
			return nil, &domain.StateError{Op: "decode", State: ws.Name, Err: err}
		}
	}

	start, ok := byName[msg.StartState]
	if !ok {
		return nil, &domain.StateError{
			Op:  "decode",
			Err: fmt.Errorf("start state %q: %w", msg.StartState, domain.ErrUnresolvedStateReference),
		}
	}
	return &Machine{Name: msg.Name, Start: start}, nil
}

func decodeState(s *State, ws *wirepb.State, byName map[string]*State, regs *callable.Registries) error {
	for _, wp := range ws.Processors {
		args, err := decodeArgs(wp.CallableArgs)
		if err != nil {
			return fmt.Errorf("processor %q: %w", wp.Name, err)
		}
		c, err := regs.Processors.New(wp.CallableName, args)
		if err != nil {
			return fmt.Errorf("processor %q: %w", wp.Name, err)
		}
		s.AddProcessor(NewProcessor(wp.Name, c))
	}

	for _, wt := range ws.Transitions {
		next, ok := byName[wt.NextState]
		if !ok {
			return fmt.Errorf("transition %q: %w: %q", wt.Name, domain.ErrUnresolvedStateReference, wt.NextState)
		}

		t := NewTransition(wt.Name, next)
		for _, wp := range wt.Predicates {
			args, err := decodeArgs(wp.CallableArgs)
			if err != nil {
				return fmt.Errorf("transition %q: predicate %q: %w", wt.Name, wp.Name, err)
			}
			c, err := regs.Predicates.New(wp.CallableName, args)
			if err != nil {
				return fmt.Errorf("transition %q: predicate %q: %w", wt.Name, wp.Name, err)
			}
			t.Predicates = append(t.Predicates, NewTransitionPredicate(wp.Name, c))
		}
		if wi := wt.Instruction; wi != nil {
			t.Instruction = domain.Instruction{Name: wi.Name, Audio: wi.Audio, Image: wi.Image, Video: wi.Video}
		}
		s.AddTransition(t)
	}
	return nil
}

func decodeArgs(raw string) (callable.Args, error) {
	args := callable.Args{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("%w: callable_args: %v", domain.ErrInvalidArguments, err)
	}
	return args, nil
}

func checkRegistries(regs *callable.Registries) error {
	if regs == nil || regs.Processors == nil || regs.Predicates == nil {
		return fmt.Errorf("%w: no callable registries", domain.ErrUnknownCallable)
	}
	return nil
}
