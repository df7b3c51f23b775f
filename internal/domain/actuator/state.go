package actuator

import "time"

// State is the transient sequencer state. It is never persisted.
type State int

const (
	// StateIdle means no actuation is in progress.
	StateIdle State = iota
	// StateEnergized means the duty cycle is applied and the hold timer is running.
	StateEnergized
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateEnergized:
		return "energized"
	case StateIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Trigger requests one actuation cycle.
// Only its position in the queue matters; the fields are kept for logging.
type Trigger struct {
	// Source names the command source that produced the trigger (e.g. "http", "grpc").
	Source string
	// EnqueuedAt is when the trigger was accepted by the queue.
	EnqueuedAt time.Time
}

// Status describes the service for status endpoints.
type Status struct {
	// State is the current sequencer state.
	State State
	// Completed counts finished actuation cycles since start.
	Completed uint64
	// Aborted counts cycles skipped for missing settings or failed for errors.
	Aborted uint64
	// Pending is the number of triggers waiting in the queue.
	Pending int
}

// ParseState is the inverse of State.String. Unknown names map to StateIdle.
func ParseState(s string) State {
	if s == StateEnergized.String() {
		return StateEnergized
	}

	return StateIdle
}
