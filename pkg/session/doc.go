/*
Package session multiplexes many conversations over one machine graph.

Each session owns a runner.Runner positioned somewhere in a shared graph.
The graph is prepared once by the Manager and only read while stepping, so
sessions never interfere with each other. Frames for the same session are
serialized by a per-session lock; frames for different sessions proceed in
parallel.
*/
package session
