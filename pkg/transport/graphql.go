package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/pkg/logger"
)

const getChatsQuery = `
query GetChats {
  chats(order_by: { created_at: desc }) {
    id
    title
    created_at
    messages(order_by: { created_at: desc }, limit: 1) {
      content
      created_at
    }
  }
}`

const createChatMutation = `
mutation CreateChat($title: String!) {
  insert_chats_one(object: { title: $title }) {
    id
    title
    created_at
  }
}`

const sendMessageMutation = `
mutation SendMessage($chat_id: uuid!, $content: String!, $client_ref: String!) {
  insert_messages_one(object: {
    chat_id: $chat_id,
    sender: "user",
    content: $content,
    client_ref: $client_ref
  }) {
    id
    content
    created_at
  }
}`

const requestReplyMutation = `
mutation RequestReply($chat_id: uuid!, $content: String!, $client_ref: String!) {
  sendMessage(chat_id: $chat_id, content: $content, client_ref: $client_ref) {
    id
  }
}`

// GraphQLGateway talks to the remote store over GraphQL: HTTP POST for
// queries and mutations, a websocket for subscriptions.
type GraphQLGateway struct {
	url        string
	wsURL      string
	creds      CredentialSource
	httpClient *http.Client
	log        logger.Logger
}

func NewGraphQLGateway(url, wsURL string, creds CredentialSource, timeout time.Duration, log logger.Logger) *GraphQLGateway {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &GraphQLGateway{
		url:        url,
		wsURL:      wsURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// do executes one GraphQL operation and decodes its data field into
// out. The bearer credential is read fresh for every call.
func (g *GraphQLGateway) do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := g.creds.Token()
	if err != nil {
		return fmt.Errorf("failed to read credential: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var gqlResp graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}

type wireChat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []struct {
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"messages"`
}

func (g *GraphQLGateway) Query(ctx context.Context) ([]RemoteConversation, error) {
	var data struct {
		Chats []wireChat `json:"chats"`
	}
	if err := g.do(ctx, getChatsQuery, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	conversations := make([]RemoteConversation, 0, len(data.Chats))
	for _, c := range data.Chats {
		rc := RemoteConversation{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt}
		if len(c.Messages) > 0 {
			rc.LastMessage = c.Messages[0].Content
		}
		conversations = append(conversations, rc)
	}
	return conversations, nil
}

func (g *GraphQLGateway) CreateChat(ctx context.Context, title string) (RemoteConversation, error) {
	var data struct {
		Inserted wireChat `json:"insert_chats_one"`
	}
	vars := map[string]interface{}{"title": title}
	if err := g.do(ctx, createChatMutation, vars, &data); err != nil {
		return RemoteConversation{}, fmt.Errorf("failed to create chat: %w", err)
	}
	return RemoteConversation{
		ID:        data.Inserted.ID,
		Title:     data.Inserted.Title,
		CreatedAt: data.Inserted.CreatedAt,
	}, nil
}

func (g *GraphQLGateway) PostMessage(ctx context.Context, conversationID, content string, requestReply bool) (string, error) {
	correlation := uuid.NewString()
	vars := map[string]interface{}{
		"chat_id":    conversationID,
		"content":    content,
		"client_ref": correlation,
	}

	if err := g.do(ctx, sendMessageMutation, vars, nil); err != nil {
		return correlation, fmt.Errorf("failed to persist message: %w", err)
	}

	if requestReply {
		if err := g.do(ctx, requestReplyMutation, vars, nil); err != nil {
			return correlation, fmt.Errorf("failed to request reply: %w", err)
		}
	}

	g.log.Debug("posted message: conversation=%s correlation=%s reply=%t", conversationID, correlation, requestReply)
	return correlation, nil
}
