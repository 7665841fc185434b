package testutil

import (
	"context"
	"sync"

	"github.com/parleyhq/parley/pkg/chat"
)

// FakeResponder implements the stream.Responder interface with a
// scripted reply or error. When Block is set, Respond waits on it
// before returning, which lets tests hold a send in flight.
type FakeResponder struct {
	Reply string
	Err   error
	Block chan struct{}

	mu          sync.Mutex
	calls       int
	lastMessage string
	lastHistory []chat.Message
}

func NewFakeResponder(reply string) *FakeResponder {
	return &FakeResponder{Reply: reply}
}

func (f *FakeResponder) Respond(ctx context.Context, message string, history []chat.Message) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastMessage = message
	f.lastHistory = append([]chat.Message(nil), history...)
	block := f.Block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

// Calls returns how many times Respond was invoked.
func (f *FakeResponder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastMessage returns the most recently submitted message text.
func (f *FakeResponder) LastMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMessage
}

// LastHistory returns the history passed to the most recent call.
func (f *FakeResponder) LastHistory() []chat.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.Message(nil), f.lastHistory...)
}
