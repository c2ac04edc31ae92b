package callable

import (
	"context"
	"errors"

	"github.com/aretw0/wca/pkg/domain"
)

// Args is the flat constructor argument map of a callable.
// Values must be JSON-encodable.
type Args map[string]any

// Callable is the part shared by processors and predicates.
type Callable interface {
	// CallableName returns the class name the callable is registered under.
	CallableName() string
	// Args returns the arguments needed to rebuild this instance.
	Args() Args
}

// Processor extracts facts from a frame.
type Processor interface {
	Callable
	Process(ctx context.Context, frame domain.Frame) (map[string]any, error)
}

// Predicate decides whether a transition may fire.
type Predicate interface {
	Callable
	Test(ctx context.Context, app domain.AppState) (bool, error)
}

// Preparer is implemented by callables that need initialization before use.
// Prepare may be called more than once and must be idempotent.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Cleaner is implemented by callables holding resources that must be released.
type Cleaner interface {
	Clean(ctx context.Context) error
}

// Prepare invokes c.Prepare if c implements Preparer.
func Prepare(ctx context.Context, c any) error {
	if p, ok := c.(Preparer); ok {
		return p.Prepare(ctx)
	}
	return nil
}

// Clean invokes Clean on every callable implementing Cleaner.
// All cleaners run; their errors are joined.
func Clean(ctx context.Context, cs ...any) error {
	var errs []error
	for _, c := range cs {
		if cl, ok := c.(Cleaner); ok {
			if err := cl.Clean(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Copy returns a shallow copy of the arguments.
func (a Args) Copy() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
