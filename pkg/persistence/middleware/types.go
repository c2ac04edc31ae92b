// Package middleware wraps machine stores with cross-cutting behavior.
package middleware

import "github.com/aretw0/wca/pkg/ports"

// Middleware allows wrapping a MachineStore to add behavior.
type Middleware func(ports.MachineStore) ports.MachineStore

// Chain applies mws to store; the first middleware is the outermost.
func Chain(store ports.MachineStore, mws ...Middleware) ports.MachineStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
