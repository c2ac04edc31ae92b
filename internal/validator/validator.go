// Package validator checks machine graphs for mistakes that would only
// surface while encoding or running them.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm"
)

// Severity ranks an Issue.
type Severity string

const (
	// SeverityError issues make Encode or Feed fail.
	SeverityError Severity = "error"
	// SeverityWarning issues are legal but likely unintended.
	SeverityWarning Severity = "warning"
)

// Issue is one finding about a graph.
type Issue struct {
	Severity Severity `json:"severity"`
	State    string   `json:"state"`
	Element  string   `json:"element,omitempty"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

func (i Issue) String() string {
	where := i.State
	if i.Element != "" {
		where += "/" + i.Element
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, where, i.Message)
}

// AggregateError collects the error-severity issues of a graph.
type AggregateError struct {
	Issues []Issue
}

func (e *AggregateError) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return fmt.Sprintf("found %d errors:\n- %s", len(e.Issues), strings.Join(lines, "\n- "))
}

// Unwrap exposes the sentinel errors of the issues to errors.Is.
func (e *AggregateError) Unwrap() []error {
	var errs []error
	for _, issue := range e.Issues {
		if issue.Err != nil {
			errs = append(errs, issue.Err)
		}
	}
	return errs
}

// Inspect crawls the graph from start and reports every issue found, in
// discovery order. With a nil regs, callable classes are not checked.
func Inspect(start *fsm.State, regs *callable.Registries) []Issue {
	var issues []Issue
	add := func(sev Severity, state, element string, err error, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: sev,
			State:    state,
			Element:  element,
			Message:  fmt.Sprintf(format, args...),
			Err:      err,
		})
	}

	if start == nil {
		add(SeverityError, "", "", domain.ErrUnresolvedStateReference, "no start state")
		return issues
	}

	var requireProcessor, requirePredicate func(string) error
	if regs != nil {
		requireProcessor, requirePredicate = regs.Processors.Require, regs.Predicates.Require
	}

	byName := make(map[string]*fsm.State)
	for s := range fsm.BFS(start) {
		if s.Name == "" {
			add(SeverityWarning, s.Name, "", nil, "state has no name")
		}
		if prev, ok := byName[s.Name]; ok && prev != s {
			add(SeverityError, s.Name, "", domain.ErrDuplicateStateName, "another reachable state has the same name")
		}
		byName[s.Name] = s

		for _, p := range s.Processors {
			checkCallable(add, s.Name, "processor "+p.Name, p.Callable, requireProcessor)
		}

		for i, t := range s.Transitions {
			element := "transition " + t.Name
			if t.NextState == nil {
				add(SeverityError, s.Name, element, domain.ErrUnresolvedStateReference, "transition has no next state")
			}
			for _, p := range t.Predicates {
				checkCallable(add, s.Name, element+" predicate "+p.Name, p.Callable, requirePredicate)
			}
			if len(t.Predicates) == 0 && i < len(s.Transitions)-1 {
				add(SeverityWarning, s.Name, element, nil,
					"transition always holds, the %d transitions after it are never taken", len(s.Transitions)-1-i)
			}
		}
	}
	return issues
}

func checkCallable(
	add func(Severity, string, string, error, string, ...any),
	state, element string,
	c callable.Callable,
	require func(string) error,
) {
	if c == nil {
		add(SeverityError, state, element, domain.ErrUnknownCallable, "no callable")
		return
	}
	if require == nil {
		return
	}
	if err := require(c.CallableName()); err != nil {
		add(SeverityError, state, element, domain.ErrUnknownCallable, "class %q is not registered", c.CallableName())
	}
}

// Validate returns an *AggregateError holding the error-severity issues
// of the graph, or nil.
func Validate(start *fsm.State, regs *callable.Registries) error {
	var errs []Issue
	for _, issue := range Inspect(start, regs) {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Issues: errs}
}
