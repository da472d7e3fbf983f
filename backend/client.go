// Package backend is the HTTP client for the multiai server API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"multiai/catalog"
	"multiai/config"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 10 * 1024 * 1024

// unknownServerError is reported when an error body carries no message.
const unknownServerError = "Unknown server error."

// ErrEmptyBaseURL is returned by NewClient without a server URL.
var ErrEmptyBaseURL = errors.New("backend: server URL is required")

// ResponseError is a non-2xx reply from the server.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return e.Message
}

// ChatMessage is the wire form of one message: only role, content and
// type are sent.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"maxTokens"`
}

type ChatResponse struct {
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which sets no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchConfig calls GET /api/config.
func (c *Client) FetchConfig(ctx context.Context) (*catalog.Config, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseErrorBody(resp.StatusCode, body)
	}

	var cfg catalog.Config
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Backend] Config: %d providers, %d model groups, default %s",
			len(cfg.Providers), len(cfg.ModelGroups), cfg.Defaults.Model)
	}
	return &cfg, nil
}

// Chat calls POST /api/chat. A non-2xx reply is returned as *ResponseError.
func (c *Client) Chat(ctx context.Context, chatReq ChatRequest) (*ChatResponse, error) {
	if chatReq.Messages == nil {
		chatReq.Messages = []ChatMessage{}
	}
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Backend] POST /api/chat model=%s messages=%d", chatReq.Model, len(chatReq.Messages))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseErrorBody(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	if chatResp.Type == "" {
		chatResp.Type = "text"
	}
	return &chatResp, nil
}

// parseErrorBody reads {error} or {message} from a JSON error body.
// A body that is not JSON, or is JSON null, yields the generic message
// annotated with the status.
func parseErrorBody(status int, body []byte) *ResponseError {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return &ResponseError{
			Status:  status,
			Message: fmt.Sprintf("%s (HTTP %d)", unknownServerError, status),
		}
	}

	msg := ""
	if fields, ok := payload.(map[string]any); ok {
		msg = textOf(fields["error"])
		if msg == "" {
			msg = textOf(fields["message"])
		}
	}
	if msg == "" {
		msg = unknownServerError
	}
	return &ResponseError{Status: status, Message: msg}
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
	case float64:
		if t == 0 {
			return ""
		}
	case map[string]any:
		// {"error": {"message": "..."}} as returned by provider proxies
		if m, ok := t["message"].(string); ok && m != "" {
			return m
		}
	}
	data, _ := json.Marshal(v)
	return string(data)
}
