package testutil

import (
	"context"
	"sync"

	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/transport"
)

// PostedMessage records one PostMessage call against the fake gateway.
type PostedMessage struct {
	ConversationID string
	Content        string
	RequestReply   bool
	Correlation    string
}

// FakeGateway implements transport.Gateway for testing. Scripted
// errors and recorded calls allow asserting degrade-gracefully paths
// without a backend.
type FakeGateway struct {
	mu sync.Mutex

	Conversations []transport.RemoteConversation
	Created       transport.RemoteConversation

	QueryErr     error
	CreateErr    error
	PostErr      error
	SubscribeErr error

	QueryCalls  int
	CreateCalls int
	Posted      []PostedMessage

	Subscriptions []*FakeSubscription
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (g *FakeGateway) Query(ctx context.Context) ([]transport.RemoteConversation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.QueryCalls++
	if g.QueryErr != nil {
		return nil, g.QueryErr
	}
	result := make([]transport.RemoteConversation, len(g.Conversations))
	copy(result, g.Conversations)
	return result, nil
}

func (g *FakeGateway) CreateChat(ctx context.Context, title string) (transport.RemoteConversation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateCalls++
	if g.CreateErr != nil {
		return transport.RemoteConversation{}, g.CreateErr
	}
	created := g.Created
	if created.Title == "" {
		created.Title = title
	}
	return created, nil
}

func (g *FakeGateway) PostMessage(ctx context.Context, conversationID, content string, requestReply bool) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	correlation := "corr-" + conversationID
	g.Posted = append(g.Posted, PostedMessage{
		ConversationID: conversationID,
		Content:        content,
		RequestReply:   requestReply,
		Correlation:    correlation,
	})
	if g.PostErr != nil {
		return correlation, g.PostErr
	}
	return correlation, nil
}

func (g *FakeGateway) Subscribe(ctx context.Context, conversationID string) (transport.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SubscribeErr != nil {
		return nil, g.SubscribeErr
	}
	sub := NewFakeSubscription(conversationID)
	g.Subscriptions = append(g.Subscriptions, sub)
	return sub, nil
}

// PostedMessages returns a copy of the recorded PostMessage calls.
func (g *FakeGateway) PostedMessages() []PostedMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make([]PostedMessage, len(g.Posted))
	copy(result, g.Posted)
	return result
}

// FakeSubscription is a scriptable transport.Subscription. Push
// delivers a snapshot as the live feed would; CloseCount exposes how
// many times Close was invoked for lifecycle assertions.
type FakeSubscription struct {
	ConversationID string

	mu         sync.Mutex
	updates    chan []chat.Message
	closed     bool
	closeCount int
}

func NewFakeSubscription(conversationID string) *FakeSubscription {
	return &FakeSubscription{
		ConversationID: conversationID,
		updates:        make(chan []chat.Message, 8),
	}
}

func (s *FakeSubscription) Updates() <-chan []chat.Message {
	return s.updates
}

func (s *FakeSubscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCount++
	if !s.closed {
		s.closed = true
		close(s.updates)
	}
}

// Push delivers a message snapshot to the consumer. Returns false if
// the subscription is already closed.
func (s *FakeSubscription) Push(snapshot []chat.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.updates <- snapshot
	return true
}

// CloseCount returns how many times Close has been called.
func (s *FakeSubscription) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCount
}
