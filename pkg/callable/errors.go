package callable

import (
	"fmt"

	"github.com/aretw0/wca/pkg/domain"
)

// Kind distinguishes the two callable namespaces.
type Kind string

const (
	KindProcessor Kind = "processor"
	KindPredicate Kind = "predicate"
)

// CallableError reports a failed lookup or construction of a callable.
// It matches both its sentinel (domain.ErrUnknownCallable or
// domain.ErrInvalidArguments) and its cause with errors.Is.
type CallableError struct {
	Kind  Kind
	Name  string
	Err   error
	Cause error
}

func (e *CallableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s %q: %v: %v", e.Kind, e.Name, e.Err, e.Cause)
}

func (e *CallableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func unknown(kind Kind, name string) error {
	return &CallableError{Kind: kind, Name: name, Err: domain.ErrUnknownCallable}
}

func invalid(kind Kind, name string, cause error) error {
	return &CallableError{Kind: kind, Name: name, Err: domain.ErrInvalidArguments, Cause: cause}
}
