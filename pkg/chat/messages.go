package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a single entry in a conversation's ordered log.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

func NewUserMessage(conversationID, content string) Message {
	return Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Sender:         SenderUser,
		Content:        strings.TrimSpace(content),
		CreatedAt:      time.Now(),
	}
}

func NewAssistantMessage(conversationID, content string) Message {
	return Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Sender:         SenderAssistant,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

func (m Message) IsAssistant() bool {
	return m.Sender == SenderAssistant
}

func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

func (m Message) WithTimestamp(t time.Time) Message {
	m.CreatedAt = t
	return m
}

// Ordered reports whether the messages are monotonically non-decreasing
// by creation time.
func Ordered(messages []Message) bool {
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			return false
		}
	}
	return true
}
