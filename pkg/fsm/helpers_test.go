package fsm_test

import (
	"context"
	"errors"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
)

// constPredicate always returns val and counts its calls.
func constPredicate(name string, val bool, calls *int) *callable.PredicateFunc {
	return &callable.PredicateFunc{
		Name: name,
		Fn: func(context.Context, domain.AppState) (bool, error) {
			if calls != nil {
				*calls++
			}
			return val, nil
		},
	}
}

func factsProcessor(facts map[string]any) *callable.ProcessorFunc {
	return &callable.ProcessorFunc{
		Name: "Facts",
		Fn: func(context.Context, domain.Frame) (map[string]any, error) {
			return facts, nil
		},
	}
}

var errBroken = errors.New("broken")

// preparing records the order in which callables are prepared.
type preparing struct {
	id  string
	log *[]string
	err error
}

func (p *preparing) CallableName() string { return "Preparing" }
func (p *preparing) Args() callable.Args  { return callable.Args{} }

func (p *preparing) Prepare(context.Context) error {
	*p.log = append(*p.log, p.id)
	return p.err
}

func (p *preparing) Process(context.Context, domain.Frame) (map[string]any, error) {
	return nil, nil
}

func (p *preparing) Test(context.Context, domain.AppState) (bool, error) {
	return true, nil
}

// cleaning records cleanups and fails when err is set.
type cleaning struct {
	preparing
}

func (c *cleaning) Clean(context.Context) error {
	*c.log = append(*c.log, "clean "+c.id)
	return c.err
}
