package transport

import (
	"context"
	"time"

	"github.com/parleyhq/parley/pkg/chat"
)

// RemoteConversation is a conversation row as returned by the backend
// list query, including the most recent message preview.
type RemoteConversation struct {
	ID          string
	Title       string
	CreatedAt   time.Time
	LastMessage string
}

// Subscription is a long-lived message feed for one conversation. It
// delivers the full ordered message set and subsequent live updates
// until closed. Close must be called exactly once when the consuming
// conversation is deselected or replaced; implementations make repeat
// calls safe, but an unclosed subscription is a resource leak.
type Subscription interface {
	// Updates yields ordered message snapshots. The channel is closed
	// when the subscription ends.
	Updates() <-chan []chat.Message
	Close()
}

// Gateway abstracts the three remote operation kinds: one-shot list
// query, one-shot write mutations, and the live message subscription.
// Every call attaches the current bearer credential, re-read at call
// time so credential rotation is observed without restart.
type Gateway interface {
	Query(ctx context.Context) ([]RemoteConversation, error)
	CreateChat(ctx context.Context, title string) (RemoteConversation, error)

	// PostMessage persists a user message and, when requestReply is
	// set, asks the remote side for an assistant-authored reply. Both
	// writes carry the returned correlation id so an eventual reply can
	// be joined back to its originating request.
	PostMessage(ctx context.Context, conversationID, content string, requestReply bool) (string, error)

	Subscribe(ctx context.Context, conversationID string) (Subscription, error)
}

// CredentialSource supplies the current bearer credential. It is
// consulted on every call and never cached.
type CredentialSource interface {
	Token() (string, error)
}

// CredentialFunc adapts a function to a CredentialSource.
type CredentialFunc func() (string, error)

func (f CredentialFunc) Token() (string, error) {
	return f()
}

// StaticCredential returns a CredentialSource that always yields tok.
func StaticCredential(tok string) CredentialSource {
	return CredentialFunc(func() (string, error) {
		return tok, nil
	})
}
