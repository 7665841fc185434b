package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/logger"
	"github.com/parleyhq/parley/pkg/transport"
)

var upgrader = websocket.Upgrader{
	Subprotocols: []string{"graphql-ws"},
}

type wsFrame struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// subscriptionServer speaks enough graphql-ws to exercise the client:
// ack the init, forward the init and start frames to received, then
// send the scripted data frames.
func subscriptionServer(frames []string, received chan<- wsFrame) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var init wsFrame
		if err := conn.ReadJSON(&init); err != nil {
			return
		}
		if received != nil {
			received <- init
		}
		conn.WriteJSON(wsFrame{Type: "connection_ack"})

		var start wsFrame
		if err := conn.ReadJSON(&start); err != nil {
			return
		}
		if received != nil {
			received <- start
		}

		conn.WriteJSON(wsFrame{Type: "ka"})
		for _, frame := range frames {
			conn.WriteJSON(wsFrame{ID: "1", Type: "data", Payload: json.RawMessage(frame)})
		}

		// Hold the connection open until the client stops or drops it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestSubscribeDeliversOrderedSnapshots(t *testing.T) {
	frame := `{"data":{"messages":[
		{"id":"m1","sender":"user","content":"hello","created_at":"2026-08-31T09:00:00Z","chat_id":"c1"},
		{"id":"m2","sender":"assistant","content":"hi!","created_at":"2026-08-31T09:01:00Z","chat_id":"c1"}
	]}}`

	received := make(chan wsFrame, 2)
	server := subscriptionServer([]string{frame}, received)
	defer server.Close()

	gw := transport.NewGraphQLGateway("", wsURL(server), transport.StaticCredential("tok"), 0, logger.Discard())
	sub, err := gw.Subscribe(context.Background(), "c1")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case snapshot := <-sub.Updates():
		require.Len(t, snapshot, 2)
		assert.Equal(t, "m1", snapshot[0].ID)
		assert.Equal(t, chat.SenderUser, snapshot[0].Sender)
		assert.Equal(t, "c1", snapshot[0].ConversationID)
		assert.Equal(t, chat.SenderAssistant, snapshot[1].Sender)
		assert.True(t, chat.Ordered(snapshot))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for subscription snapshot")
	}

	// credential travels in the init payload
	gotInit := <-received
	assert.Equal(t, "connection_init", gotInit.Type)
	assert.Contains(t, string(gotInit.Payload), "Bearer tok")

	// start frame carries the subscription keyed by conversation id
	gotStart := <-received
	assert.Equal(t, "start", gotStart.Type)
	assert.Contains(t, string(gotStart.Payload), `"chat_id":"c1"`)
}

func TestSubscribeCloseIsIdempotent(t *testing.T) {
	server := subscriptionServer(nil, nil)
	defer server.Close()

	gw := transport.NewGraphQLGateway("", wsURL(server), transport.StaticCredential("tok"), 0, logger.Discard())
	sub, err := gw.Subscribe(context.Background(), "c1")
	require.NoError(t, err)

	sub.Close()
	sub.Close() // must not panic

	select {
	case _, open := <-sub.Updates():
		assert.False(t, open, "updates channel should be closed after Close")
	case <-time.After(5 * time.Second):
		t.Fatal("updates channel not closed")
	}
}

func TestSubscribeDialFailure(t *testing.T) {
	server := subscriptionServer(nil, nil)
	server.Close()

	gw := transport.NewGraphQLGateway("", wsURL(server), transport.StaticCredential("tok"), 0, logger.Discard())
	_, err := gw.Subscribe(context.Background(), "c1")
	require.Error(t, err)
}
