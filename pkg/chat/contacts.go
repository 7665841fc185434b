package chat

import "strings"

// Contact is a static counterpart for a simulated conversation. The
// directory is fixed at startup; presence data never changes.
type Contact struct {
	ID     string
	Name   string
	Avatar string
	Status string
	Bot    bool
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusAway    = "away"
)

var contacts = []Contact{
	{ID: "1", Name: "Bob Smith", Avatar: "👨‍💼", Status: StatusOnline, Bot: true},
	{ID: "2", Name: "Alice Johnson", Avatar: "👩‍🦰", Status: StatusOnline, Bot: true},
	{ID: "3", Name: "Carol Wilson", Avatar: "👩‍🦱", Status: StatusOnline, Bot: true},
	{ID: "4", Name: "David Brown", Avatar: "👨‍🦱", Status: StatusOnline, Bot: true},
}

// Contacts returns the fixed contact directory.
func Contacts() []Contact {
	result := make([]Contact, len(contacts))
	copy(result, contacts)
	return result
}

func ContactByID(id string) (Contact, bool) {
	for _, c := range contacts {
		if c.ID == id {
			return c, true
		}
	}
	return Contact{}, false
}

// ContactForConversation resolves the contact behind a simulated
// conversation id ("sim-<contactID>"). Returns false for live ids and
// for locally created chats with no directory entry.
func ContactForConversation(conversationID string) (Contact, bool) {
	if !IsSimulatedID(conversationID) {
		return Contact{}, false
	}
	return ContactByID(strings.TrimPrefix(conversationID, SimulatedIDPrefix))
}
