package model

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"multiai/backend"
	"multiai/config"
	"multiai/storage"
)

// ErrNoBackend is the failure reported when no server URL is configured.
var ErrNoBackend = errors.New("no backend server configured")

// Dispatch is a send in progress: the conversation it belongs to and the
// request built when the user pressed send.
type Dispatch struct {
	ChatID  string
	Request backend.ChatRequest
}

// DispatchResult is the settled outcome of a Dispatch.
type DispatchResult struct {
	ChatID   string
	Response *backend.ChatResponse
	Err      error
}

// Run performs POST /api/chat. It touches no Model state, so it may run
// off the update loop.
func (d *Dispatch) Run(ctx context.Context, client ChatClient) DispatchResult {
	if client == nil {
		return DispatchResult{ChatID: d.ChatID, Err: ErrNoBackend}
	}
	resp, err := client.Chat(ctx, d.Request)
	return DispatchResult{ChatID: d.ChatID, Response: resp, Err: err}
}

// BeginSend records the user's message and returns the request to run.
// Returns nil while another send is in flight or when content is blank.
func (m *Model) BeginSend(content string) *Dispatch {
	if m.sending {
		return nil
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	if _, ok := m.ActiveChat(); !ok {
		m.CreateChat()
	}
	chatID := m.currentChatID

	userMessage := m.newMessage(storage.RoleUser, content)
	m.replaceChat(chatID, func(c *storage.Conversation) {
		c.Messages = append(c.Messages, userMessage)
		c.Model = m.selectedModel
		c.UpdatedAt = userMessage.CreatedAt
		if storage.IsPlaceholderTitle(c.Title) {
			if title := storage.TitleFromContent(content); title != "" {
				c.Title = title
			}
		}
	})
	m.saveChats()

	m.sending = true

	chat, _ := m.Chat(chatID)
	messages := make([]backend.ChatMessage, 0, len(chat.Messages))
	for _, msg := range chat.Messages {
		messages = append(messages, backend.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
			Type:    string(msg.Type),
		})
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] Sending %d messages for %s to %s", len(messages), chatID, m.selectedModel)
	}

	return &Dispatch{
		ChatID: chatID,
		Request: backend.ChatRequest{
			Model:       m.selectedModel,
			Messages:    messages,
			Temperature: m.settings.Temperature,
			MaxTokens:   m.settings.MaxTokens,
		},
	}
}

// FinishSend appends the reply, or a system message describing the
// failure, to the conversation the send started in. The in-flight flag is
// always cleared. A reply for a conversation deleted meanwhile is dropped.
func (m *Model) FinishSend(res DispatchResult) {
	defer func() { m.sending = false }()

	if res.Err == nil && res.Response == nil {
		res.Err = errors.New("empty response")
	}

	var msg storage.Message
	if res.Err != nil {
		msg = m.newMessage(storage.RoleSystem, "Failed to get response: "+res.Err.Error())
		m.notify(Notice{
			Kind:  NoticeError,
			Title: "Request failed",
			Body:  "Check your API keys or try again shortly.",
		})
	} else {
		msg = m.newMessage(storage.RoleAssistant, res.Response.Content)
		if res.Response.Type == string(storage.TypeImage) {
			msg.Type = storage.TypeImage
		}
	}

	if !m.replaceChat(res.ChatID, func(c *storage.Conversation) {
		c.Messages = append(c.Messages, msg)
		c.UpdatedAt = msg.CreatedAt
	}) {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Conversation %s was deleted before its reply arrived, dropping", res.ChatID)
		}
		return
	}
	m.saveChats()
}

// SendMessage runs a whole send synchronously. Returns false when the
// send was refused (in flight or blank content).
func (m *Model) SendMessage(ctx context.Context, content string) bool {
	d := m.BeginSend(content)
	if d == nil {
		return false
	}
	m.FinishSend(d.Run(ctx, m.client))
	return true
}

// SendMessageCmd starts a send and runs the request as a bubbletea command.
// The UI passes the resulting ChatResponseMsg to FinishSend.
func (m *Model) SendMessageCmd(content string) tea.Cmd {
	d := m.BeginSend(content)
	if d == nil {
		return nil
	}
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		return ChatResponseMsg{Result: d.Run(ctx, client)}
	}
}
