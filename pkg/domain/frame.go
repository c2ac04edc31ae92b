package domain

// RawKey is the AppState key under which the incoming frame is stored.
const RawKey = "raw"

// Frame is one sensor input delivered to the runner.
type Frame struct {
	ID          uint64 `json:"id"`
	Data        []byte `json:"data"`
	ContentType string `json:"content_type,omitempty"`
}

// AppState holds the facts extracted from a single frame.
// It lives only for the duration of one step.
type AppState map[string]any

// NewAppState creates the initial application state for a frame.
func NewAppState(frame Frame) AppState {
	return AppState{RawKey: frame}
}

// Raw returns the frame the state was built from.
func (a AppState) Raw() (Frame, bool) {
	f, ok := a[RawKey].(Frame)
	return f, ok
}

// Merge copies every key of other into a, overwriting collisions.
func (a AppState) Merge(other map[string]any) {
	for k, v := range other {
		a[k] = v
	}
}
