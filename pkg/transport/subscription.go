package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/logger"
)

const subscribeMessagesQuery = `
subscription GetMessages($chat_id: uuid!) {
  messages(
    where: { chat_id: { _eq: $chat_id } },
    order_by: { created_at: asc }
  ) {
    id
    sender
    content
    created_at
    chat_id
  }
}`

// graphql-ws client protocol frames.
type gqlwsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	gqlwsConnectionInit = "connection_init"
	gqlwsConnectionAck  = "connection_ack"
	gqlwsKeepAlive      = "ka"
	gqlwsStart          = "start"
	gqlwsStop           = "stop"
	gqlwsData           = "data"
	gqlwsError          = "error"
	gqlwsComplete       = "complete"
)

const ackTimeout = 10 * time.Second

type wireMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	ChatID    string    `json:"chat_id"`
}

// wsSubscription is the graphql-ws backed Subscription. Close is
// guarded by sync.Once: the stop frame is sent and the socket torn down
// exactly once no matter how often it is called.
type wsSubscription struct {
	conn    *websocket.Conn
	updates chan []chat.Message
	done    chan struct{}
	once    sync.Once
	log     logger.Logger
}

func (s *wsSubscription) Updates() <-chan []chat.Message {
	return s.updates
}

func (s *wsSubscription) Close() {
	s.once.Do(func() {
		close(s.done)
		stop, _ := json.Marshal(gqlwsMessage{ID: "1", Type: gqlwsStop})
		s.conn.SetWriteDeadline(time.Now().Add(time.Second))
		s.conn.WriteMessage(websocket.TextMessage, stop)
		s.conn.Close()
	})
}

// Subscribe opens the live message feed for one conversation over
// graphql-ws. The feed delivers the full ordered message set for the
// conversation and then every subsequent update until Close.
func (g *GraphQLGateway) Subscribe(ctx context.Context, conversationID string) (Subscription, error) {
	token, err := g.creds.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	dialer := websocket.Dialer{
		Subprotocols:     []string{"graphql-ws"},
		HandshakeTimeout: ackTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, g.wsURL, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("failed to dial subscription endpoint: %w", err)
	}

	if err := initConnection(conn, token); err != nil {
		conn.Close()
		return nil, err
	}

	startPayload, _ := json.Marshal(graphQLRequest{
		Query:     subscribeMessagesQuery,
		Variables: map[string]interface{}{"chat_id": conversationID},
	})
	start, _ := json.Marshal(gqlwsMessage{ID: "1", Type: gqlwsStart, Payload: startPayload})
	if err := conn.WriteMessage(websocket.TextMessage, start); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start subscription: %w", err)
	}

	sub := &wsSubscription{
		conn:    conn,
		updates: make(chan []chat.Message, 1),
		done:    make(chan struct{}),
		log:     g.log,
	}
	go sub.readLoop(conversationID)

	g.log.Debug("subscribed to conversation %s", conversationID)
	return sub, nil
}

// initConnection performs the connection_init / connection_ack
// handshake, attaching the bearer credential.
func initConnection(conn *websocket.Conn, token string) error {
	initPayload, _ := json.Marshal(map[string]interface{}{
		"headers": map[string]string{"Authorization": "Bearer " + token},
	})
	init, _ := json.Marshal(gqlwsMessage{Type: gqlwsConnectionInit, Payload: initPayload})
	if err := conn.WriteMessage(websocket.TextMessage, init); err != nil {
		return fmt.Errorf("failed to send connection_init: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(ackTimeout))
	defer conn.SetReadDeadline(time.Time{})
	for {
		var msg gqlwsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("failed waiting for connection_ack: %w", err)
		}
		switch msg.Type {
		case gqlwsConnectionAck:
			return nil
		case gqlwsKeepAlive:
			// ignore
		default:
			return fmt.Errorf("unexpected frame %q before ack", msg.Type)
		}
	}
}

func (s *wsSubscription) readLoop(conversationID string) {
	defer close(s.updates)

	for {
		var msg gqlwsMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			select {
			case <-s.done:
			default:
				s.log.Warn("subscription read failed: conversation=%s err=%v", conversationID, err)
			}
			return
		}

		switch msg.Type {
		case gqlwsKeepAlive:
			continue
		case gqlwsComplete:
			return
		case gqlwsError:
			s.log.Error("subscription error: conversation=%s payload=%s", conversationID, string(msg.Payload))
			return
		case gqlwsData:
			snapshot, err := decodeSnapshot(msg.Payload, conversationID)
			if err != nil {
				s.log.Warn("dropping malformed subscription frame: %v", err)
				continue
			}
			select {
			case s.updates <- snapshot:
			case <-s.done:
				return
			}
		}
	}
}

func decodeSnapshot(payload json.RawMessage, conversationID string) ([]chat.Message, error) {
	var frame struct {
		Data struct {
			Messages []wireMessage `json:"messages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil, fmt.Errorf("failed to decode data frame: %w", err)
	}

	snapshot := make([]chat.Message, 0, len(frame.Data.Messages))
	for _, m := range frame.Data.Messages {
		sender := chat.SenderAssistant
		if m.Sender == "user" {
			sender = chat.SenderUser
		}
		snapshot = append(snapshot, chat.Message{
			ID:             m.ID,
			ConversationID: conversationID,
			Sender:         sender,
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
		})
	}
	return snapshot, nil
}
