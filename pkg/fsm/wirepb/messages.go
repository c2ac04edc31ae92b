package wirepb

// Instruction is the payload emitted when a transition fires.
type Instruction struct {
	Name  string
	Audio string
	Image []byte
	Video []byte
}

// Processor references a processor callable by class name.
// CallableArgs is the JSON encoding of the constructor arguments.
type Processor struct {
	Name         string
	CallableName string
	CallableArgs string
}

// TransitionPredicate references a predicate callable by class name.
type TransitionPredicate struct {
	Name         string
	CallableName string
	CallableArgs string
}

// Transition links two states. NextState is a state name.
type Transition struct {
	Name        string
	Predicates  []*TransitionPredicate
	Instruction *Instruction
	NextState   string
}

type State struct {
	Name        string
	Processors  []*Processor
	Transitions []*Transition
}

// StateMachine is the top level message of a serialized FSM.
type StateMachine struct {
	Name       string
	States     []*State
	Assets     map[string][]byte
	StartState string
}
