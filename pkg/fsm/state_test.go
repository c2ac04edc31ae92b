package fsm_test

import (
	"context"
	"testing"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RunProcessors_LastWriteWins(t *testing.T) {
	s := fsm.NewState("s").AddProcessor(
		fsm.NewProcessor("first", factsProcessor(map[string]any{"a": 1, "b": 1})),
		fsm.NewProcessor("second", factsProcessor(map[string]any{"b": 2})),
	)
	frame := domain.Frame{ID: 1, Data: []byte("img")}

	app, err := s.RunProcessors(context.Background(), frame)
	require.NoError(t, err)

	assert.Equal(t, 1, app["a"])
	assert.Equal(t, 2, app["b"])
	raw, ok := app.Raw()
	require.True(t, ok)
	assert.Equal(t, frame, raw)
}

func TestTransition_Conjunction(t *testing.T) {
	ctx := context.Background()
	var secondCalls int

	tr := fsm.NewTransition("t", nil,
		fsm.NewTransitionPredicate("p1", constPredicate("P1", true, nil)),
		fsm.NewTransitionPredicate("p2", constPredicate("P2", false, &secondCalls)),
	)
	ok, err := tr.Holds(ctx, domain.AppState{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, secondCalls)

	s := fsm.NewState("s").AddTransition(tr)
	got, err := s.ResolveTransition(ctx, domain.AppState{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransition_ShortCircuit(t *testing.T) {
	var secondCalls int
	tr := fsm.NewTransition("t", nil,
		fsm.NewTransitionPredicate("p1", constPredicate("P1", false, nil)),
		fsm.NewTransitionPredicate("p2", constPredicate("P2", true, &secondCalls)),
	)

	ok, err := tr.Holds(context.Background(), domain.AppState{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, secondCalls)
}

func TestTransition_EmptyPredicatesHold(t *testing.T) {
	ok, err := fsm.NewTransition("t", nil).Holds(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestState_ResolveTransition_FirstMatch(t *testing.T) {
	a, b := fsm.NewState("a"), fsm.NewState("b")
	first := fsm.NewTransition("first", a, fsm.NewTransitionPredicate("p", constPredicate("P", true, nil)))
	second := fsm.NewTransition("second", b, fsm.NewTransitionPredicate("p", constPredicate("P", true, nil)))
	s := fsm.NewState("s").AddTransition(first, second)

	for i := 0; i < 3; i++ {
		got, err := s.ResolveTransition(context.Background(), domain.AppState{})
		require.NoError(t, err)
		assert.Same(t, first, got)
	}
}

func TestState_Step_NoMatchStaysPut(t *testing.T) {
	other := fsm.NewState("other")
	s := fsm.NewState("s").AddTransition(
		fsm.NewTransition("t1", other, fsm.NewTransitionPredicate("p", constPredicate("P", false, nil))),
		fsm.NewTransition("t2", other,
			fsm.NewTransitionPredicate("p", constPredicate("P", true, nil)),
			fsm.NewTransitionPredicate("q", constPredicate("Q", false, nil)),
		),
	)
	s.Transitions[0].Instruction = domain.Instruction{Audio: "never"}

	next, inst, err := s.Step(context.Background(), domain.Frame{})
	require.NoError(t, err)
	assert.Same(t, s, next)
	assert.Equal(t, domain.Instruction{}, inst)
}

func TestState_Step_EmitsInstruction(t *testing.T) {
	end := fsm.NewState("end")
	tr := fsm.NewTransition("go", end, fsm.NewTransitionPredicate("p", constPredicate("P", true, nil)))
	tr.Instruction = domain.Instruction{Audio: "go now"}
	s := fsm.NewState("start").AddTransition(tr)

	res, err := s.StepDetailed(context.Background(), domain.Frame{})
	require.NoError(t, err)
	assert.Same(t, end, res.Next)
	assert.Same(t, tr, res.Transition)
	assert.Equal(t, "go now", res.Instruction.Audio)
}

func TestState_Step_PropagatesCallableErrors(t *testing.T) {
	failing := &callable.ProcessorFunc{
		Name: "Failing",
		Fn: func(context.Context, domain.Frame) (map[string]any, error) {
			return nil, errBroken
		},
	}
	s := fsm.NewState("s").AddProcessor(fsm.NewProcessor("p", failing))

	_, _, err := s.Step(context.Background(), domain.Frame{})
	assert.ErrorIs(t, err, errBroken)
}

func TestState_PrepareAll_Order(t *testing.T) {
	var log []string
	s := fsm.NewState("s").
		AddProcessor(
			fsm.NewProcessor("p1", &preparing{id: "p1", log: &log}),
			fsm.NewProcessor("p2", &preparing{id: "p2", log: &log}),
		).
		AddTransition(fsm.NewTransition("t", nil, fsm.NewTransitionPredicate("q", &preparing{id: "q", log: &log})))

	require.NoError(t, s.PrepareAll(context.Background()))
	assert.Equal(t, []string{"p1", "p2", "q"}, log)
}

func TestState_PrepareAll_Aborts(t *testing.T) {
	var log []string
	s := fsm.NewState("s").AddProcessor(
		fsm.NewProcessor("p1", &preparing{id: "p1", log: &log, err: errBroken}),
		fsm.NewProcessor("p2", &preparing{id: "p2", log: &log}),
	)

	err := s.PrepareAll(context.Background())
	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, []string{"p1"}, log)

	var se *domain.StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "s", se.State)
}

func TestNames_Next(t *testing.T) {
	n := fsm.NewNames()
	assert.Equal(t, "Processor_1", n.Next(fsm.KindProcessor))
	assert.Equal(t, "Processor_2", n.Next(fsm.KindProcessor))
	assert.Equal(t, "State_1", n.Next(fsm.KindState))

	assert.Equal(t, "Processor_1", fsm.NewNames().Next(fsm.KindProcessor))
}
