package wirepb

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessage writes a length-delimited sub-message, even when empty.
func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// Marshal returns the wire encoding of m.
func (m *Instruction) Marshal() []byte {
	return m.append(nil)
}

func (m *Instruction) append(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Audio)
	b = appendBytes(b, 3, m.Image)
	return appendBytes(b, 4, m.Video)
}

func appendCallable(b []byte, name, callableName, callableArgs string) []byte {
	b = appendString(b, 1, name)
	b = appendString(b, 2, callableName)
	return appendString(b, 3, callableArgs)
}

// Marshal returns the wire encoding of m.
func (m *Processor) Marshal() []byte {
	return appendCallable(nil, m.Name, m.CallableName, m.CallableArgs)
}

// Marshal returns the wire encoding of m.
func (m *TransitionPredicate) Marshal() []byte {
	return appendCallable(nil, m.Name, m.CallableName, m.CallableArgs)
}

// Marshal returns the wire encoding of m.
func (m *Transition) Marshal() []byte {
	b := appendString(nil, 1, m.Name)
	for _, p := range m.Predicates {
		b = appendMessage(b, 2, p.Marshal())
	}
	if m.Instruction != nil {
		b = appendMessage(b, 3, m.Instruction.Marshal())
	}
	return appendString(b, 4, m.NextState)
}

// Marshal returns the wire encoding of m.
func (m *State) Marshal() []byte {
	b := appendString(nil, 1, m.Name)
	for _, p := range m.Processors {
		b = appendMessage(b, 2, p.Marshal())
	}
	for _, t := range m.Transitions {
		b = appendMessage(b, 3, t.Marshal())
	}
	return b
}

// Marshal returns the wire encoding of m. Map entries are written in key
// order so the output is deterministic.
func (m *StateMachine) Marshal() []byte {
	b := appendString(nil, 1, m.Name)
	for _, s := range m.States {
		b = appendMessage(b, 2, s.Marshal())
	}

	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry := appendString(nil, 1, k)
		entry = appendBytes(entry, 2, m.Assets[k])
		b = appendMessage(b, 3, entry)
	}

	return appendString(b, 4, m.StartState)
}
