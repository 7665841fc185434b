package chat

import (
	"strings"
	"time"
)

// Kind discriminates the two conversation sources. Every downstream
// decision switches on it, never on field presence.
type Kind string

const (
	KindLive      Kind = "live"
	KindSimulated Kind = "simulated"
)

// Conversation is an addressable chat thread, live or simulated.
// Values are replaced wholesale on each registry refresh, never mutated.
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	Kind        Kind      `json:"kind"`
	LastMessage string    `json:"last_message,omitempty"`
	UnreadCount int       `json:"unread_count,omitempty"`
}

// SimulatedIDPrefix is the reserved id namespace for simulated
// conversations. Remote-issued ids never start with it, so the id alone
// routes an operation to the correct subsystem.
const SimulatedIDPrefix = "sim-"

func IsSimulatedID(id string) bool {
	return strings.HasPrefix(id, SimulatedIDPrefix)
}

func KindForID(id string) Kind {
	if IsSimulatedID(id) {
		return KindSimulated
	}
	return KindLive
}
