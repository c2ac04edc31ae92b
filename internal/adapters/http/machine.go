package http

import (
	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm"
)

// MachineView is the JSON shape of a machine, states in BFS order.
type MachineView struct {
	Name   string      `json:"name"`
	Start  string      `json:"start_state"`
	States []StateView `json:"states"`
}

type StateView struct {
	Name        string           `json:"name"`
	Processors  []CallableView   `json:"processors"`
	Transitions []TransitionView `json:"transitions"`
}

type CallableView struct {
	Name  string        `json:"name"`
	Class string        `json:"callable_name"`
	Args  callable.Args `json:"callable_args"`
}

type TransitionView struct {
	Name        string              `json:"name"`
	Predicates  []CallableView      `json:"predicates"`
	Instruction *domain.Instruction `json:"instruction,omitempty"`
	NextState   string              `json:"next_state"`
}

// NewMachineView flattens the graph reachable from m.Start.
func NewMachineView(m fsm.Machine) MachineView {
	v := MachineView{Name: m.Name, States: []StateView{}}
	if m.Start == nil {
		return v
	}
	v.Start = m.Start.Name

	for s := range fsm.BFS(m.Start) {
		sv := StateView{
			Name:        s.Name,
			Processors:  make([]CallableView, len(s.Processors)),
			Transitions: make([]TransitionView, len(s.Transitions)),
		}
		for i, p := range s.Processors {
			sv.Processors[i] = CallableView{Name: p.Name, Class: p.ClassName(), Args: p.Args()}
		}
		for i, t := range s.Transitions {
			tv := TransitionView{Name: t.Name, Predicates: make([]CallableView, len(t.Predicates))}
			for j, p := range t.Predicates {
				tv.Predicates[j] = CallableView{Name: p.Name, Class: p.ClassName(), Args: p.Args()}
			}
			if !t.Instruction.IsEmpty() {
				inst := t.Instruction
				tv.Instruction = &inst
			}
			if t.NextState != nil {
				tv.NextState = t.NextState.Name
			}
			sv.Transitions[i] = tv
		}
		v.States = append(v.States, sv)
	}
	return v
}
