package wirepb

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrInvalidUTF8 is returned when a string field is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("string field contains invalid UTF-8")

// walk calls fn with the payload of every length-delimited field of b.
// Fields of any other wire type are skipped, as are fields fn ignores.
func walk(b []byte, fn func(num protowire.Number, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := fn(num, v); err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
	}
	return nil
}

func str(v []byte) (string, error) {
	if !utf8.Valid(v) {
		return "", ErrInvalidUTF8
	}
	return string(v), nil
}

func clone(v []byte) []byte {
	return append([]byte(nil), v...)
}

// Unmarshal parses b into m, replacing its contents.
func (m *Instruction) Unmarshal(b []byte) error {
	*m = Instruction{}
	return walk(b, func(num protowire.Number, v []byte) (err error) {
		switch num {
		case 1:
			m.Name, err = str(v)
		case 2:
			m.Audio, err = str(v)
		case 3:
			m.Image = clone(v)
		case 4:
			m.Video = clone(v)
		}
		return err
	})
}

func unmarshalCallable(b []byte, name, callableName, callableArgs *string) error {
	return walk(b, func(num protowire.Number, v []byte) (err error) {
		switch num {
		case 1:
			*name, err = str(v)
		case 2:
			*callableName, err = str(v)
		case 3:
			*callableArgs, err = str(v)
		}
		return err
	})
}

// Unmarshal parses b into m, replacing its contents.
func (m *Processor) Unmarshal(b []byte) error {
	*m = Processor{}
	return unmarshalCallable(b, &m.Name, &m.CallableName, &m.CallableArgs)
}

// Unmarshal parses b into m, replacing its contents.
func (m *TransitionPredicate) Unmarshal(b []byte) error {
	*m = TransitionPredicate{}
	return unmarshalCallable(b, &m.Name, &m.CallableName, &m.CallableArgs)
}

// Unmarshal parses b into m, replacing its contents.
// Repeated occurrences of the instruction field are merged.
func (m *Transition) Unmarshal(b []byte) error {
	*m = Transition{}
	return walk(b, func(num protowire.Number, v []byte) (err error) {
		switch num {
		case 1:
			m.Name, err = str(v)
		case 2:
			p := &TransitionPredicate{}
			if err = p.Unmarshal(v); err == nil {
				m.Predicates = append(m.Predicates, p)
			}
		case 3:
			if m.Instruction == nil {
				m.Instruction = &Instruction{}
			}
			err = m.Instruction.merge(v)
		case 4:
			m.NextState, err = str(v)
		}
		return err
	})
}

func (m *Instruction) merge(b []byte) error {
	var next Instruction
	if err := next.Unmarshal(b); err != nil {
		return err
	}
	if next.Name != "" {
		m.Name = next.Name
	}
	if next.Audio != "" {
		m.Audio = next.Audio
	}
	if len(next.Image) > 0 {
		m.Image = next.Image
	}
	if len(next.Video) > 0 {
		m.Video = next.Video
	}
	return nil
}

// Unmarshal parses b into m, replacing its contents.
func (m *State) Unmarshal(b []byte) error {
	*m = State{}
	return walk(b, func(num protowire.Number, v []byte) (err error) {
		switch num {
		case 1:
			m.Name, err = str(v)
		case 2:
			p := &Processor{}
			if err = p.Unmarshal(v); err == nil {
				m.Processors = append(m.Processors, p)
			}
		case 3:
			t := &Transition{}
			if err = t.Unmarshal(v); err == nil {
				m.Transitions = append(m.Transitions, t)
			}
		}
		return err
	})
}

// Unmarshal parses b into m, replacing its contents.
func (m *StateMachine) Unmarshal(b []byte) error {
	*m = StateMachine{}
	return walk(b, func(num protowire.Number, v []byte) (err error) {
		switch num {
		case 1:
			m.Name, err = str(v)
		case 2:
			s := &State{}
			if err = s.Unmarshal(v); err == nil {
				m.States = append(m.States, s)
			}
		case 3:
			err = m.unmarshalAsset(v)
		case 4:
			m.StartState, err = str(v)
		}
		return err
	})
}

func (m *StateMachine) unmarshalAsset(b []byte) error {
	var key string
	var value []byte
	err := walk(b, func(num protowire.Number, v []byte) (err error) {
		switch num {
		case 1:
			key, err = str(v)
		case 2:
			value = clone(v)
		}
		return err
	})
	if err != nil {
		return err
	}
	if m.Assets == nil {
		m.Assets = make(map[string][]byte)
	}
	m.Assets[key] = value
	return nil
}
