// Package wirepb holds the protobuf messages of the binary FSM format.
//
// The messages are encoded and decoded directly with protowire so the
// format stays byte compatible with the following schema without a code
// generation step:
//
//	message Instruction         { string name = 1; string audio = 2; bytes image = 3; bytes video = 4; }
//	message TransitionPredicate { string name = 1; string callable_name = 2; string callable_args = 3; }
//	message Processor           { string name = 1; string callable_name = 2; string callable_args = 3; }
//	message Transition          { string name = 1; repeated TransitionPredicate predicates = 2; Instruction instruction = 3; string next_state = 4; }
//	message State               { string name = 1; repeated Processor processors = 2; repeated Transition transitions = 3; }
//	message StateMachine        { string name = 1; repeated State states = 2; map<string, bytes> assets = 3; string start_state = 4; }
//
// Fields are written in tag order and proto3 default values are omitted.
// Unknown fields are skipped on decode.
package wirepb
