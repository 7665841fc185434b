package stream

import (
	"fmt"
	"time"

	"github.com/parleyhq/parley/pkg/chat"
)

// seedMessages builds the opening exchange for a simulated
// conversation: a greeting from the contact, a user reply, and a
// follow-up, timestamped 30/25/20 minutes before attach.
func seedMessages(conv chat.Conversation, now time.Time) []chat.Message {
	name := conv.Title
	if contact, ok := chat.ContactForConversation(conv.ID); ok {
		name = contact.Name
	}

	greeting := fmt.Sprintf("Hello! I'm %s. How can I help you today?", name)
	followUp := "I'm doing great, thank you for asking! I'm here to assist you with any questions or help you need."

	return []chat.Message{
		chat.NewAssistantMessage(conv.ID, greeting).WithTimestamp(now.Add(-30 * time.Minute)),
		chat.NewUserMessage(conv.ID, "Hi there! How are you?").WithTimestamp(now.Add(-25 * time.Minute)),
		chat.NewAssistantMessage(conv.ID, followUp).WithTimestamp(now.Add(-20 * time.Minute)),
	}
}
