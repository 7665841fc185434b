package assistant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/pkg/assistant"
	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/logger"
)

func newResponder(apiKey, baseURL string) *assistant.Responder {
	return assistant.NewResponder(assistant.Config{
		APIKey:      apiKey,
		Model:       "openai/gpt-4o-mini",
		MaxTokens:   500,
		Temperature: 0.7,
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
	}, logger.Discard())
}

func completionHandler(reply string, calls *int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}
}

func TestRespondSuccess(t *testing.T) {
	var calls int64
	var gotBody struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var gotAuth, gotTitle string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Hi!"}},
			},
		})
	}))
	defer server.Close()

	history := []chat.Message{
		chat.NewAssistantMessage("sim-1", "Hello! How can I help?"),
		chat.NewUserMessage("sim-1", "Hi there!"),
	}

	r := newResponder("sk-or-test", server.URL)
	reply, err := r.Respond(context.Background(), "What's up?", history)

	require.NoError(t, err)
	assert.Equal(t, "Hi!", reply)
	assert.EqualValues(t, 1, calls)
	assert.Equal(t, "Bearer sk-or-test", gotAuth)
	assert.Equal(t, "Chat Application", gotTitle)

	assert.Equal(t, "openai/gpt-4o-mini", gotBody.Model)
	assert.Equal(t, 500, gotBody.MaxTokens)
	assert.InEpsilon(t, 0.7, gotBody.Temperature, 0.0001)

	// system preamble, history in original order, then the new message
	require.Len(t, gotBody.Messages, 4)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "assistant", gotBody.Messages[1].Role)
	assert.Equal(t, "Hello! How can I help?", gotBody.Messages[1].Content)
	assert.Equal(t, "user", gotBody.Messages[2].Role)
	assert.Equal(t, "user", gotBody.Messages[3].Role)
	assert.Equal(t, "What's up?", gotBody.Messages[3].Content)
}

func TestRespondConfigGate(t *testing.T) {
	var calls int64
	server := httptest.NewServer(completionHandler("unused", &calls))
	defer server.Close()

	for _, key := range []string{"", "your-api-key-here"} {
		r := newResponder(key, server.URL)
		_, err := r.Respond(context.Background(), "hello", nil)

		var cfgErr *assistant.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	}
	assert.EqualValues(t, 0, calls, "no network call may be issued without a key")
}

func TestRespondAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	r := newResponder("sk-or-test", server.URL)
	_, err := r.Respond(context.Background(), "hello", nil)

	var authErr *assistant.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Contains(t, authErr.Body, "bad key")
}

func TestRespondProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	r := newResponder("sk-or-test", server.URL)
	_, err := r.Respond(context.Background(), "hello", nil)

	var protoErr *assistant.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, http.StatusTooManyRequests, protoErr.Status)
}

func TestRespondNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	r := newResponder("sk-or-test", server.URL)
	_, err := r.Respond(context.Background(), "hello", nil)

	var netErr *assistant.NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestRespondEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	r := newResponder("sk-or-test", server.URL)
	_, err := r.Respond(context.Background(), "hello", nil)

	var emptyErr *assistant.EmptyResponseError
	require.ErrorAs(t, err, &emptyErr)
}
