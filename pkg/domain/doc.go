/*
Package domain contains the core value types shared by every layer of wca.

It is kept free of I/O and of the graph itself: the FSM data model lives in
package fsm, while this package defines what flows through it.

# Key Entities

  - Frame: a single sensor input (usually an encoded image).
  - AppState: the facts extracted from one frame by a state's processors.
  - Instruction: the payload emitted to the user when a transition fires.
  - Events and LifecycleHooks: observability callbacks for the runner.
*/
package domain
