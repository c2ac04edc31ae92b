package fsm

import (
	"fmt"
	"sync"
)

// Kinds of graph elements that get generated default names.
const (
	KindState      = "State"
	KindProcessor  = "Processor"
	KindTransition = "Transition"
	KindPredicate  = "TransitionPredicate"
)

// Names generates default names such as "Processor_1".
// Each instance counts independently, so building the same graph twice with
// fresh generators yields the same names.
type Names struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewNames returns a generator whose counters all start at 1.
func NewNames() *Names {
	return &Names{counts: make(map[string]int)}
}

// Next returns the next name for kind.
func (n *Names) Next(kind string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts[kind]++
	return fmt.Sprintf("%s_%d", kind, n.counts[kind])
}
