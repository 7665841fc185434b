package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/parleyhq/parley/pkg/chat"
	"github.com/parleyhq/parley/pkg/logger"
)

const systemPreamble = "You are a helpful AI assistant. Be conversational, friendly, and concise."

// Config holds the settings consumed read-only by the Responder.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	BaseURL     string
	Timeout     time.Duration
}

// Responder wraps the external completion service. One call per
// Respond, no retries; classification of failures is the caller's
// signal for fallback handling.
type Responder struct {
	cfg        Config
	configured func() bool
	httpClient *http.Client
	log        logger.Logger
}

func NewResponder(cfg Config, log logger.Logger) *Responder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Responder{
		cfg: cfg,
		configured: func() bool {
			return cfg.APIKey != "" && cfg.APIKey != "your-api-key-here"
		},
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Respond builds a prompt from the fixed system instruction, the
// history in original order and the new message, issues exactly one
// completion call, and returns the generated reply text.
func (r *Responder) Respond(ctx context.Context, message string, history []chat.Message) (string, error) {
	if !r.configured() {
		return "", &ConfigError{Reason: "API key missing or placeholder"}
	}

	messages := make([]completionMessage, 0, len(history)+2)
	messages = append(messages, completionMessage{Role: "system", Content: systemPreamble})
	for _, m := range history {
		messages = append(messages, completionMessage{Role: roleFor(m.Sender), Content: m.Content})
	}
	messages = append(messages, completionMessage{Role: "user", Content: message})

	body, err := json.Marshal(completionRequest{
		Model:       r.cfg.Model,
		Messages:    messages,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := r.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "Chat Application")

	r.log.Debug("completion request: model=%s messages=%d", r.cfg.Model, len(messages))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &AuthError{Status: resp.StatusCode, Body: string(respBody)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &ProtocolError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", &EmptyResponseError{}
	}

	reply := completion.Choices[0].Message.Content
	r.log.Debug("completion response: %d chars", len(reply))
	return reply, nil
}

func roleFor(sender string) string {
	if sender == chat.SenderUser {
		return "user"
	}
	return "assistant"
}
