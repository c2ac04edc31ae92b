/*
Package callable defines the contract between the FSM and the pluggable code
that runs inside it.

A Processor extracts facts from a frame; a Predicate tests those facts. Both
are produced by a Factory from a flat argument map and report the same map
back through Args, which is what the binary codec persists. Implementations
are looked up by a stable class name in a Registry that is populated by
explicit calls at process start.

Two optional hooks complete the lifecycle:

  - Preparer: expensive or order-dependent initialization, run once before
    the first frame (for example reaching a backing service).
  - Cleaner: teardown, run by the surrounding infrastructure on shutdown.
*/
package callable
