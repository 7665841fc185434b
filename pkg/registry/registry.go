package registry

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/logger"
	"github.com/parleyhq/parley/pkg/transport"
)

// Preview texts for simulated conversations. Selection is a pure
// function of conversation id and seed so renders are reproducible.
var previews = []string{
	"Hi there! How are you?",
	"That's interesting!",
	"I see what you mean.",
	"Thanks for the update!",
	"Don't forget about our lunch plans!",
	"I'll get back to you on that.",
	"What time is it?",
	"How's your day going?",
	"Nice to meet you!",
	"See you later!",
}

// Registry produces the unified conversation list: the fixed simulated
// conversations plus whatever the remote store currently holds.
type Registry struct {
	gateway transport.Gateway
	log     logger.Logger
	seed    int64
	now     func() time.Time
}

func New(gateway transport.Gateway, log logger.Logger, seed int64) *Registry {
	return &Registry{
		gateway: gateway,
		log:     log,
		seed:    seed,
		now:     time.Now,
	}
}

// WithClock overrides the registry's notion of now. Tests only.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Simulated returns the fixed simulated conversations, reverse-recency
// ordered by their synthetic timestamps (15 minutes apart).
func (r *Registry) Simulated() []chat.Conversation {
	now := r.now()
	contacts := chat.Contacts()
	conversations := make([]chat.Conversation, 0, len(contacts))
	for i, contact := range contacts {
		id := chat.SimulatedIDPrefix + contact.ID
		conversations = append(conversations, chat.Conversation{
			ID:          id,
			Title:       contact.Name,
			CreatedAt:   now.Add(-time.Duration(i+1) * 15 * time.Minute),
			Kind:        chat.KindSimulated,
			LastMessage: r.previewFor(id),
			UnreadCount: r.unreadFor(id),
		})
	}
	return conversations
}

// List returns simulated conversations followed by live ones, filtered
// case-insensitively on title. A failing remote query degrades to the
// simulated-only list; it never raises to the caller.
func (r *Registry) List(ctx context.Context, searchTerm string) []chat.Conversation {
	conversations := r.Simulated()

	remote, err := r.gateway.Query(ctx)
	if err != nil {
		r.log.Warn("chat list query failed, showing simulated only: %v", err)
	}
	for _, rc := range remote {
		conversations = append(conversations, chat.Conversation{
			ID:          rc.ID,
			Title:       rc.Title,
			CreatedAt:   rc.CreatedAt,
			Kind:        chat.KindLive,
			LastMessage: rc.LastMessage,
		})
	}

	if searchTerm == "" {
		return conversations
	}
	needle := strings.ToLower(searchTerm)
	filtered := conversations[:0]
	for _, c := range conversations {
		if strings.Contains(strings.ToLower(c.Title), needle) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Create attempts a live chat creation for the contact. On any failure
// it synthesizes a locally scoped simulated id instead; the caller
// always receives a usable id.
func (r *Registry) Create(ctx context.Context, contact chat.Contact) string {
	title := "Chat with " + contact.Name
	created, err := r.gateway.CreateChat(ctx, title)
	if err != nil {
		r.log.Warn("chat creation failed, falling back to simulated: %v", err)
		return chat.SimulatedIDPrefix + "new-" + uuid.NewString()
	}
	r.log.Info("created chat %s (%s)", created.ID, title)
	return created.ID
}

func (r *Registry) previewFor(id string) string {
	return previews[r.hash(id, "preview")%uint32(len(previews))]
}

// unreadFor mirrors the original presentation odds (roughly 30% of
// conversations show 1-3 unread) but is stable for a given id and seed.
func (r *Registry) unreadFor(id string) int {
	h := r.hash(id, "unread")
	if h%10 < 7 {
		return 0
	}
	return int(h/10%3) + 1
}

func (r *Registry) hash(id, facet string) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s:%s:%d", facet, id, r.seed)
	return h.Sum32()
}
