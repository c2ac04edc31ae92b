/*
Package wca builds wearable cognitive assistants as finite state machines.

An assistant is a graph of states. Each state runs processors over the
incoming sensor frame, then evaluates its transitions in order: the first
transition whose predicates all hold fires, emits its instruction for the
user and moves the machine to its next state. When no transition holds the
machine stays put and emits nothing.

# Packages

  - pkg/fsm: the graph model, BFS traversal and the binary codec.
  - pkg/callable: the processor and predicate registries.
  - pkg/callable/zoo: built-in callables (such as object detection over HTTP).
  - pkg/dsl: a fluent builder for graphs.
  - pkg/runner: feeds frames through a graph.
  - pkg/session: many runners over one shared graph.
  - pkg/ports, pkg/adapters: storage of encoded machines.

# Usage

	regs := zoo.Default()

	b := dsl.New()
	b.State("start").On("seen").When(zoo.NewHasObjectClass("person")).Say("Hello!").Done()
	b.State("seen")
	start, err := b.Build("start")
	if err != nil {
		log.Fatal(err)
	}

	data, err := fsm.Encode("greeter", start, regs)
	if err != nil {
		log.Fatal(err)
	}

	start, err = fsm.Decode(data, regs)
	if err != nil {
		log.Fatal(err)
	}

	r, err := runner.New(start)
	if err != nil {
		log.Fatal(err)
	}
	inst, err := r.Feed(ctx, domain.Frame{ID: 1, Data: jpeg})

The wca command line tool wraps the same packages: it writes sample
machines, renders them as Mermaid or markdown, validates them, replays
recorded frames and serves sessions over HTTP and WebSocket.
*/
package wca
