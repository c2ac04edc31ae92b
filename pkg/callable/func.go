package callable

import (
	"context"

	"github.com/aretw0/wca/pkg/domain"
)

// ProcessorFunc adapts a function into a Processor.
// It cannot be decoded unless its name is registered with a matching factory.
type ProcessorFunc struct {
	Name string
	Argv Args
	Fn   func(ctx context.Context, frame domain.Frame) (map[string]any, error)
}

func (p *ProcessorFunc) CallableName() string { return p.Name }
func (p *ProcessorFunc) Args() Args           { return p.Argv.Copy() }

func (p *ProcessorFunc) Process(ctx context.Context, frame domain.Frame) (map[string]any, error) {
	return p.Fn(ctx, frame)
}

// PredicateFunc adapts a function into a Predicate.
type PredicateFunc struct {
	Name string
	Argv Args
	Fn   func(ctx context.Context, app domain.AppState) (bool, error)
}

func (p *PredicateFunc) CallableName() string { return p.Name }
func (p *PredicateFunc) Args() Args           { return p.Argv.Copy() }

func (p *PredicateFunc) Test(ctx context.Context, app domain.AppState) (bool, error) {
	return p.Fn(ctx, app)
}
