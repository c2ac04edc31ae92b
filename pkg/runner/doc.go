/*
Package runner drives a machine graph one frame at a time.

A Runner holds the current state of a single conversation. It is created
Idle, prepares every reachable callable in discovery order, and then moves to
Running. Each Feed call steps the current state with one frame and returns the
instruction to emit. A Runner whose current state becomes nil is Faulted and
rejects further frames.

# Usage

	r, err := runner.New(start, runner.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	for frame := range frames {
		inst, err := r.Feed(ctx, frame)
		if err != nil {
			return err
		}
		deliver(inst)
	}

Feed is not safe for concurrent use. Use package session to multiplex many
conversations over one graph.
*/
package runner
