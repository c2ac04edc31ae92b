package dsl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/wca/pkg/callable/zoo"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/dsl"
	"github.com/aretw0/wca/pkg/fsm"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := dsl.New()

	b.State("start").
		Process(zoo.NewDummy()).
		On("seen").
		Named("to_seen").
		When(zoo.NewHasObjectClass("dummy_key"), zoo.NewAlways()).
		Say("Hello!").
		Done().
		On("start").
		When(zoo.NewAlways()).
		Done()

	b.State("seen").
		On("seen").
		Play([]byte("loop.mp4")).
		Done()

	start, err := b.Build("start")
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if start.Name != "start" {
		t.Errorf("Expected start state 'start', got '%s'", start.Name)
	}
	if len(start.Processors) != 1 || start.Processors[0].Name != "Processor_1" {
		t.Fatalf("Expected one processor named 'Processor_1', got %+v", start.Processors)
	}
	if len(start.Transitions) != 2 {
		t.Fatalf("Expected 2 transitions, got %d", len(start.Transitions))
	}

	first := start.Transitions[0]
	if first.Name != "to_seen" {
		t.Errorf("Expected transition 'to_seen', got '%s'", first.Name)
	}
	if got := []string{first.Predicates[0].Name, first.Predicates[1].Name}; got[0] != "TransitionPredicate_1" || got[1] != "TransitionPredicate_2" {
		t.Errorf("Unexpected predicate names %v", got)
	}
	if first.NextState == nil || first.NextState.Name != "seen" {
		t.Fatalf("Expected transition to 'seen', got %v", first.NextState)
	}
	if start.Transitions[1].NextState != start {
		t.Errorf("Expected self loop on 'start'")
	}

	seen := first.NextState
	if seen.Transitions[0].NextState != seen {
		t.Errorf("Expected self loop on 'seen'")
	}

	next, inst, err := start.Step(context.Background(), domain.Frame{})
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if next != seen || inst.Audio != "Hello!" {
		t.Errorf("Expected to move to 'seen' saying 'Hello!', got %s / %q", next.Name, inst.Audio)
	}
}

func TestBuilder_EncodesDeterministically(t *testing.T) {
	build := func() []byte {
		b := dsl.New()
		b.State("a").Process(zoo.NewEmpty()).On("b").When(zoo.NewAlways()).Done()
		b.State("b").On("a").When(zoo.NewHasObjectClass("x")).Done()

		start, err := b.Build("a")
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		data, err := fsm.Encode("det", start, zoo.Default())
		if err != nil {
			t.Fatalf("Encode() failed: %v", err)
		}
		return data
	}

	if string(build()) != string(build()) {
		t.Errorf("Expected identical encodings from identical programs")
	}
}

func TestBuilder_ExistingState(t *testing.T) {
	b := dsl.New()
	first := b.State("s")
	if b.State("s") != first {
		t.Errorf("Expected State to return the existing builder")
	}
	if got := b.State("").Name(); got != "State_1" {
		t.Errorf("Expected generated name 'State_1', got '%s'", got)
	}
}

func TestBuilder_UnknownTarget(t *testing.T) {
	b := dsl.New()
	b.State("start").On("missing").Done()

	_, err := b.Build("start")
	if !errors.Is(err, domain.ErrUnresolvedStateReference) {
		t.Errorf("Expected ErrUnresolvedStateReference, got %v", err)
	}
}

func TestBuilder_UnknownStart(t *testing.T) {
	_, err := dsl.New().Build("nope")
	if !errors.Is(err, domain.ErrUnresolvedStateReference) {
		t.Errorf("Expected ErrUnresolvedStateReference, got %v", err)
	}
}

func TestBuilder_EmptyTarget(t *testing.T) {
	b := dsl.New(dsl.WithNames(fsm.NewNames()))
	b.State("start").On("").When(zoo.NewAlways()).Done()

	start, err := b.Build("start")
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if start.Transitions[0].NextState != nil {
		t.Errorf("Expected nil next state")
	}
}
