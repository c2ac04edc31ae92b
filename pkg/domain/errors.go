package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateStateName is returned when two distinct states in one machine share a name.
var ErrDuplicateStateName = errors.New("duplicate state name")

// ErrUnknownCallable is returned when a processor or predicate class name is not registered.
var ErrUnknownCallable = errors.New("unknown callable")

// ErrInvalidArguments is returned when a callable factory rejects its arguments.
var ErrInvalidArguments = errors.New("invalid callable arguments")

// ErrUnresolvedStateReference is returned when a transition points at a state
// that is not part of the machine.
var ErrUnresolvedStateReference = errors.New("unresolved state reference")

// ErrNullCurrentState is returned by a runner whose current state is nil.
// This happens when a transition declared without a next state was taken.
var ErrNullCurrentState = errors.New("current state is nil")

// ErrRunnerFaulted is returned when feeding a runner that already failed.
var ErrRunnerFaulted = errors.New("runner is faulted")

// ErrNotPrepared is returned when feeding a runner that has not been started.
var ErrNotPrepared = errors.New("runner is not prepared")

// ErrMachineNotFound is returned when a machine name cannot be found in a store.
var ErrMachineNotFound = errors.New("machine not found")

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// StateError annotates an error with the operation and state it relates to.
type StateError struct {
	Op    string // e.g. "encode", "decode", "step"
	State string
	Err   error
}

func (e *StateError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s state %q: %v", e.Op, e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// ErrInvalidMachineName is returned when a machine name cannot be used as a storage key.
var ErrInvalidMachineName = errors.New("invalid machine name")
