package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiai/catalog"
)

func TestNewClient(t *testing.T) {
	_, err := NewClient("  ")
	assert.ErrorIs(t, err, ErrEmptyBaseURL)

	c, err := NewClient("http://localhost:3000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", c.BaseURL())
}

func TestFetchConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/config", r.URL.Path)
		_ = json.NewEncoder(w).Encode(catalog.Config{
			Providers:   []catalog.Provider{{ID: "openai", Name: "OpenAI", Status: "ready", Enabled: true}},
			ModelGroups: catalog.ServerGroups(),
			Defaults:    catalog.Defaults{Model: "gpt-4o-mini", Temperature: 0.3, MaxTokens: 1024},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	cfg, err := c.FetchConfig(context.Background())
	require.NoError(t, err)
	assert.Len(t, cfg.Providers, 1)
	assert.Len(t, cfg.ModelGroups, 3)
	assert.Equal(t, "gpt-4o-mini", cfg.Defaults.Model)
	assert.Equal(t, 1024, cfg.Defaults.MaxTokens)
}

func TestFetchConfigNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.FetchConfig(context.Background())
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusServiceUnavailable, respErr.Status)
}

func TestChatSendsOnlyWireFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"model": "claude-3-5-haiku-20241022",
			"messages": [{"role": "user", "content": "Hello", "type": "text"}],
			"temperature": 0.5,
			"maxTokens": 300
		}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"Hi there"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.Chat(context.Background(), ChatRequest{
		Model:       "claude-3-5-haiku-20241022",
		Messages:    []ChatMessage{{Role: "user", Content: "Hello", Type: "text"}},
		Temperature: 0.5,
		MaxTokens:   300,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", resp.Content)
	assert.Equal(t, "text", resp.Type, "missing type defaults to text")
}

func TestChatErrorBodies(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "error field", status: 500, body: `{"error":"rate limited"}`, want: "rate limited"},
		{name: "message field", status: 400, body: `{"message":"bad model"}`, want: "bad model"},
		{name: "error preferred over message", status: 400, body: `{"error":"first","message":"second"}`, want: "first"},
		{name: "empty error falls to message", status: 400, body: `{"error":"","message":"second"}`, want: "second"},
		{name: "nested provider error", status: 502, body: `{"error":{"message":"upstream timeout"}}`, want: "upstream timeout"},
		{name: "json without message", status: 500, body: `{"code":17}`, want: "Unknown server error."},
		{name: "plain text", status: 502, body: `Bad Gateway`, want: "Unknown server error. (HTTP 502)"},
		{name: "empty body", status: 504, body: ``, want: "Unknown server error. (HTTP 504)"},
		{name: "json null", status: 500, body: `null`, want: "Unknown server error. (HTTP 500)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL)
			require.NoError(t, err)

			_, err = c.Chat(context.Background(), ChatRequest{Model: "gpt-4o"})
			var respErr *ResponseError
			require.True(t, errors.As(err, &respErr), "expected *ResponseError, got %v", err)
			assert.Equal(t, tt.status, respErr.Status)
			assert.Equal(t, tt.want, respErr.Error())
		})
	}
}

func TestChatNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), ChatRequest{Model: "gpt-4o"})
	require.Error(t, err)
	var respErr *ResponseError
	assert.False(t, errors.As(err, &respErr))
}
