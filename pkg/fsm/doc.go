/*
Package fsm implements the graph of a cognitive assistant application.

A machine is a flat, possibly cyclic graph of States reachable from a start
state. Each State owns an ordered list of Processors, which turn a frame into
facts, and an ordered list of Transitions, whose Predicates test those facts.
On every frame the first Transition whose predicates all hold is taken and its
Instruction is emitted; when none holds the machine stays where it is.

Graphs are discovered breadth first (BFS), which fixes both the order in which
callables are prepared and the order in which states are serialized by Encode.
Decode rebuilds a graph from bytes by resolving callable class names against a
callable.Registries and linking next states by name.
*/
package fsm
