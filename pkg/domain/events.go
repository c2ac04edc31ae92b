package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventFrame      EventType = "frame"
	EventTransition EventType = "transition"
	EventPrepare    EventType = "prepare"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// FrameEvent is emitted after a frame has been processed by a state.
type FrameEvent struct {
	EventBase
	FrameID  uint64        `json:"frame_id"`
	State    string        `json:"state"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// TransitionEvent is emitted when a transition fires.
type TransitionEvent struct {
	EventBase
	From        string      `json:"from"`
	To          string      `json:"to"`
	Transition  string      `json:"transition"`
	Instruction Instruction `json:"instruction"`
}

// PrepareEvent is emitted once per state during preparation.
type PrepareEvent struct {
	EventBase
	State string `json:"state"`
}

// LifecycleHooks defines callbacks for runner observability.
type LifecycleHooks struct {
	OnFrame      func(context.Context, *FrameEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnPrepare    func(context.Context, *PrepareEvent)
}
