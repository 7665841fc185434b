package stream

// SendState is the per-conversation send state machine. At most one
// state may be out of Idle per conversation at any time.
type SendState string

const (
	// StateIdle indicates no in-flight send activity
	StateIdle SendState = "idle"

	// StateSendPending indicates a submitted message is being dispatched
	StateSendPending SendState = "sending"

	// StateAwaitingAssistant indicates a completion call is in flight
	// (simulated conversations only)
	StateAwaitingAssistant SendState = "awaiting_assistant"

	// StateError is the transient failure state; it always resolves to
	// Idle after the fallback message is appended
	StateError SendState = "error"
)

// String returns the string representation of the state
func (s SendState) String() string {
	return string(s)
}

// InFlight reports whether a send is currently active.
func (s SendState) InFlight() bool {
	return s == StateSendPending || s == StateAwaitingAssistant
}
