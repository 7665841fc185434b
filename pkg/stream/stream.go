package stream

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/logger"
	"github.com/parleyhq/parley/pkg/transport"
)

// Responder produces an assistant reply for a submitted message given
// the conversation's accumulated history.
type Responder interface {
	Respond(ctx context.Context, message string, history []chat.Message) (string, error)
}

// MessageStream owns one conversation's ordered message log and its
// send state machine. Live conversations merge subscription snapshots;
// simulated conversations keep a local buffer and call the responder.
// Streams are fully independent of each other.
type MessageStream struct {
	conv      chat.Conversation
	gateway   transport.Gateway
	responder Responder
	log       logger.Logger
	now       func() time.Time

	mu       sync.Mutex
	messages []chat.Message
	state    SendState
	lastErr  error

	sub      transport.Subscription
	pumpDone chan struct{}
}

// New creates the stream for a conversation. Simulated conversations
// are seeded with their opening exchange; live ones start empty until
// Attach delivers the first subscription snapshot.
func New(conv chat.Conversation, gateway transport.Gateway, responder Responder, log logger.Logger) *MessageStream {
	ms := &MessageStream{
		conv:      conv,
		gateway:   gateway,
		responder: responder,
		log:       log,
		now:       time.Now,
		state:     StateIdle,
	}
	if conv.Kind == chat.KindSimulated {
		ms.messages = seedMessages(conv, ms.now())
	}
	return ms
}

// WithClock overrides the stream's notion of now. Tests only.
func (ms *MessageStream) WithClock(now func() time.Time) *MessageStream {
	ms.now = now
	return ms
}

// Conversation returns the conversation this stream belongs to.
func (ms *MessageStream) Conversation() chat.Conversation {
	return ms.conv
}

// Attach opens the live subscription feed and starts merging its
// snapshots into the log. No-op for simulated conversations.
func (ms *MessageStream) Attach(ctx context.Context) error {
	if ms.conv.Kind != chat.KindLive {
		return nil
	}

	sub, err := ms.gateway.Subscribe(ctx, ms.conv.ID)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	ms.sub = sub
	ms.pumpDone = make(chan struct{})
	ms.mu.Unlock()

	go ms.pump(sub)
	return nil
}

// pump applies each subscription snapshot wholesale. The server is the
// sole source of truth for live message content.
func (ms *MessageStream) pump(sub transport.Subscription) {
	defer close(ms.pumpDone)
	for snapshot := range sub.Updates() {
		ms.mu.Lock()
		ms.messages = append(ms.messages[:0:0], snapshot...)
		ms.mu.Unlock()
	}
}

// Close releases the subscription, if any. Safe to call more than
// once; the underlying feed is closed exactly once.
func (ms *MessageStream) Close() {
	ms.mu.Lock()
	sub := ms.sub
	done := ms.pumpDone
	ms.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Close()
	<-done
}

// Messages returns a copy of the current ordered log.
func (ms *MessageStream) Messages() []chat.Message {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	result := make([]chat.Message, len(ms.messages))
	copy(result, ms.messages)
	return result
}

// State returns the current send state.
func (ms *MessageStream) State() SendState {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.state
}

// LastError returns the most recent send failure, already reflected in
// the log as a fallback message. Informational only.
func (ms *MessageStream) LastError() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.lastErr
}

// Send runs the submit state machine for one user message. It reports
// whether the submission was accepted: empty or whitespace-only text is
// a no-op, and a submit while another send is in flight is rejected
// silently rather than queued. An accepted send blocks the calling
// goroutine until the cycle completes; other streams are unaffected.
func (ms *MessageStream) Send(ctx context.Context, text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	ms.mu.Lock()
	if ms.state != StateIdle {
		ms.mu.Unlock()
		ms.log.Debug("send rejected, state=%s conversation=%s", ms.state, ms.conv.ID)
		return false
	}
	ms.state = StateSendPending

	if ms.conv.Kind == chat.KindSimulated {
		history := make([]chat.Message, len(ms.messages))
		copy(history, ms.messages)
		ms.appendLocked(chat.NewUserMessage(ms.conv.ID, trimmed).WithTimestamp(ms.now()))
		ms.state = StateAwaitingAssistant
		ms.mu.Unlock()
		ms.sendSimulated(ctx, trimmed, history)
		return true
	}

	ms.mu.Unlock()
	ms.sendLive(ctx, trimmed)
	return true
}

// sendLive persists the message and requests the remote assistant
// reply in one correlated operation. Success and failure both return
// to Idle: no local message is synthesized either way, because the
// subscription feed is the sole source of truth for live content.
func (ms *MessageStream) sendLive(ctx context.Context, content string) {
	correlation, err := ms.gateway.PostMessage(ctx, ms.conv.ID, content, true)

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.lastErr = err
	ms.state = StateIdle
	if err != nil {
		ms.log.Error("failed to post message: conversation=%s correlation=%s err=%v", ms.conv.ID, correlation, err)
		return
	}
	ms.log.Debug("message posted: conversation=%s correlation=%s", ms.conv.ID, correlation)
}

// sendSimulated drives the completion call and appends either the
// reply or a self-explanatory fallback. The Error state is transient:
// the stream always ends Idle and sends stay available.
func (ms *MessageStream) sendSimulated(ctx context.Context, content string, history []chat.Message) {
	reply, err := ms.responder.Respond(ctx, content, history)

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.lastErr = err
	if err != nil {
		ms.state = StateError
		ms.log.Warn("assistant call failed: conversation=%s err=%v", ms.conv.ID, err)
		fallback := chat.NewAssistantMessage(ms.conv.ID, "Error: "+err.Error())
		ms.appendLocked(fallback.WithTimestamp(ms.now()))
		ms.state = StateIdle
		return
	}

	ms.appendLocked(chat.NewAssistantMessage(ms.conv.ID, reply).WithTimestamp(ms.now()))
	ms.state = StateIdle
	ms.log.Debug("assistant reply appended: conversation=%s chars=%d", ms.conv.ID, len(reply))
}

// appendLocked appends while preserving the ordering invariant: a
// timestamp earlier than the current tail is clamped to it so the log
// stays monotonically non-decreasing.
func (ms *MessageStream) appendLocked(msg chat.Message) {
	if n := len(ms.messages); n > 0 && msg.CreatedAt.Before(ms.messages[n-1].CreatedAt) {
		msg.CreatedAt = ms.messages[n-1].CreatedAt
	}
	ms.messages = append(ms.messages, msg)
}
