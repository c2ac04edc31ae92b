// Package zoo provides the built-in processors and predicates.
//
// Nothing is registered implicitly: call Register (or Default) when the
// process starts so that serialized machines can be decoded.
package zoo
