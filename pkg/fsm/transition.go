package fsm

import (
	"context"

	"github.com/aretw0/wca/pkg/domain"
)

// Transition moves the machine to NextState when all of its predicates hold.
type Transition struct {
	Name        string
	Predicates  []*TransitionPredicate
	Instruction domain.Instruction
	NextState   *State
}

// NewTransition returns a transition to next guarded by preds.
// It carries an empty instruction.
func NewTransition(name string, next *State, preds ...*TransitionPredicate) *Transition {
	return &Transition{Name: name, Predicates: preds, NextState: next}
}

// Holds reports whether every predicate holds for app. Evaluation stops at
// the first predicate that does not hold or fails. A transition without
// predicates always holds.
func (t *Transition) Holds(ctx context.Context, app domain.AppState) (bool, error) {
	for _, p := range t.Predicates {
		ok, err := p.Test(ctx, app)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
