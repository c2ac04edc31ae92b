package callable

import (
	"errors"
	"sort"
	"sync"
)

// Factory builds a callable from its argument map.
type Factory[T Callable] func(args Args) (T, error)

// Registry manages the callables available under one namespace.
type Registry[T Callable] struct {
	kind      Kind
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry creates a new empty registry for the given kind.
func NewRegistry[T Callable](kind Kind) *Registry[T] {
	return &Registry[T]{
		kind:      kind,
		factories: make(map[string]Factory[T]),
	}
}

// Kind returns the namespace of the registry.
func (r *Registry[T]) Kind() Kind {
	return r.kind
}

// Register adds a factory to the registry.
// If a factory with the same name exists, it is overwritten.
func (r *Registry[T]) Register(name string, fn Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Require returns a *CallableError matching domain.ErrUnknownCallable
// if name is not registered.
func (r *Registry[T]) Require(name string) error {
	if !r.Has(name) {
		return unknown(r.kind, name)
	}
	return nil
}

// New looks up a factory by name and builds an instance from args.
// Returns domain.ErrUnknownCallable if the name is not registered and
// domain.ErrInvalidArguments if the factory rejects args.
func (r *Registry[T]) New(name string, args Args) (T, error) {
	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	var zero T
	if !ok {
		return zero, unknown(r.kind, name)
	}
	if args == nil {
		args = Args{}
	}

	c, err := fn(args)
	if err != nil {
		var ce *CallableError
		if errors.As(err, &ce) {
			return zero, err
		}
		return zero, invalid(r.kind, name, err)
	}
	return c, nil
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registries bundles the processor and predicate namespaces.
type Registries struct {
	Processors *Registry[Processor]
	Predicates *Registry[Predicate]
}

// NewRegistries creates empty processor and predicate registries.
func NewRegistries() *Registries {
	return &Registries{
		Processors: NewRegistry[Processor](KindProcessor),
		Predicates: NewRegistry[Predicate](KindPredicate),
	}
}
