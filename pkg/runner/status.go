package runner

import "fmt"

// Status is the lifecycle stage of a Runner.
type Status int

const (
	// Idle runners have not been prepared yet.
	Idle Status = iota
	// Running runners accept frames.
	Running
	// Faulted runners hit a nil current state and reject frames.
	Faulted
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "running":
		*s = Running
	case "faulted":
		*s = Faulted
	default:
		return fmt.Errorf("unknown runner status %q", text)
	}
	return nil
}
