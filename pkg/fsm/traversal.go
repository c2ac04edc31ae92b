package fsm

import (
	"context"
	"iter"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
)

// BFS yields every state reachable from start exactly once, breadth first.
// Transitions are followed in declared order so the sequence is
// deterministic for a given graph. States are identified by pointer.
func BFS(start *State) iter.Seq[*State] {
	return func(yield func(*State) bool) {
		if start == nil {
			return
		}
		visited := map[*State]struct{}{start: {}}
		queue := []*State{start}

		for len(queue) > 0 {
			s := queue[0]
			queue = queue[1:]
			if !yield(s) {
				return
			}
			for _, t := range s.Transitions {
				next := t.NextState
				if next == nil {
					continue
				}
				if _, seen := visited[next]; seen {
					continue
				}
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
}

// Collect returns the reachable states in BFS order. Two distinct states
// sharing a name are rejected with domain.ErrDuplicateStateName.
func Collect(start *State) ([]*State, error) {
	byName := make(map[string]*State)
	var states []*State
	for s := range BFS(start) {
		if prev, ok := byName[s.Name]; ok && prev != s {
			return nil, &domain.StateError{Op: "collect", State: s.Name, Err: domain.ErrDuplicateStateName}
		}
		byName[s.Name] = s
		states = append(states, s)
	}
	return states, nil
}

// PrepareAll prepares every reachable state in BFS order and stops at the
// first failure.
func PrepareAll(ctx context.Context, start *State) error {
	for s := range BFS(start) {
		if err := s.PrepareAll(ctx); err != nil {
			return err
		}
	}
	return nil
}

// CleanAll releases every reachable callable. All cleaners run, even after
// a failure; errors are joined.
func CleanAll(ctx context.Context, start *State) error {
	var cs []any
	for s := range BFS(start) {
		for _, p := range s.Processors {
			if p.Callable != nil {
				cs = append(cs, p.Callable)
			}
		}
		for _, t := range s.Transitions {
			for _, p := range t.Predicates {
				if p.Callable != nil {
					cs = append(cs, p.Callable)
				}
			}
		}
	}
	return callable.Clean(ctx, cs...)
}

// Find returns the reachable state called name, or nil.
func Find(start *State, name string) *State {
	for s := range BFS(start) {
		if s.Name == name {
			return s
		}
	}
	return nil
}
