package dsl

import (
	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm"
)

// TransitionBuilder configures one transition of a state.
type TransitionBuilder struct {
	t     *fsm.Transition
	state *StateBuilder
}

// Named replaces the generated transition name.
func (t *TransitionBuilder) Named(name string) *TransitionBuilder {
	t.t.Name = name
	return t
}

// When appends predicates with generated names. All predicates must hold
// for the transition to fire.
func (t *TransitionBuilder) When(preds ...callable.Predicate) *TransitionBuilder {
	for _, p := range preds {
		t.WhenNamed("", p)
	}
	return t
}

// WhenNamed appends a predicate called name.
func (t *TransitionBuilder) WhenNamed(name string, p callable.Predicate) *TransitionBuilder {
	if name == "" {
		name = t.state.builder.names.Next(fsm.KindPredicate)
	}
	t.t.Predicates = append(t.t.Predicates, fsm.NewTransitionPredicate(name, p))
	return t
}

// Say sets the audio (text to speech) of the instruction.
func (t *TransitionBuilder) Say(audio string) *TransitionBuilder {
	t.t.Instruction.Audio = audio
	return t
}

// Show sets the image of the instruction.
func (t *TransitionBuilder) Show(image []byte) *TransitionBuilder {
	t.t.Instruction.Image = image
	return t
}

// Play sets the video of the instruction.
func (t *TransitionBuilder) Play(video []byte) *TransitionBuilder {
	t.t.Instruction.Video = video
	return t
}

// Instruct replaces the whole instruction.
func (t *TransitionBuilder) Instruct(inst domain.Instruction) *TransitionBuilder {
	t.t.Instruction = inst
	return t
}

// Done returns to the owning state.
func (t *TransitionBuilder) Done() *StateBuilder {
	return t.state
}
