package fsm

import (
	"context"
	"fmt"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
)

// Processor is a named reference to a processor callable.
type Processor struct {
	Name     string
	Callable callable.Processor
}

// NewProcessor names the processor callable c.
func NewProcessor(name string, c callable.Processor) *Processor {
	return &Processor{Name: name, Callable: c}
}

// ClassName returns the registered class name of the callable.
func (p *Processor) ClassName() string {
	if p.Callable == nil {
		return ""
	}
	return p.Callable.CallableName()
}

// Args returns the callable's constructor arguments.
func (p *Processor) Args() callable.Args {
	if p.Callable == nil {
		return nil
	}
	return p.Callable.Args()
}

// Prepare initializes the callable. A processor without a callable has
// nothing to prepare.
func (p *Processor) Prepare(ctx context.Context) error {
	if p.Callable == nil {
		return nil
	}
	if err := callable.Prepare(ctx, p.Callable); err != nil {
		return fmt.Errorf("prepare processor %q: %w", p.Name, err)
	}
	return nil
}

func (p *Processor) Process(ctx context.Context, frame domain.Frame) (map[string]any, error) {
	if p.Callable == nil {
		return nil, fmt.Errorf("processor %q has no callable", p.Name)
	}
	return p.Callable.Process(ctx, frame)
}

// TransitionPredicate is a named reference to a predicate callable.
type TransitionPredicate struct {
	Name     string
	Callable callable.Predicate
}

// NewTransitionPredicate names the predicate callable c.
func NewTransitionPredicate(name string, c callable.Predicate) *TransitionPredicate {
	return &TransitionPredicate{Name: name, Callable: c}
}

// ClassName returns the registered class name of the callable.
func (p *TransitionPredicate) ClassName() string {
	if p.Callable == nil {
		return ""
	}
	return p.Callable.CallableName()
}

// Args returns the callable's constructor arguments.
func (p *TransitionPredicate) Args() callable.Args {
	if p.Callable == nil {
		return nil
	}
	return p.Callable.Args()
}

func (p *TransitionPredicate) Prepare(ctx context.Context) error {
	if p.Callable == nil {
		return nil
	}
	if err := callable.Prepare(ctx, p.Callable); err != nil {
		return fmt.Errorf("prepare predicate %q: %w", p.Name, err)
	}
	return nil
}

func (p *TransitionPredicate) Test(ctx context.Context, app domain.AppState) (bool, error) {
	if p.Callable == nil {
		return false, fmt.Errorf("predicate %q has no callable", p.Name)
	}
	return p.Callable.Test(ctx, app)
}
