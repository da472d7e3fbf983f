package storage

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// PlaceholderTitle names a conversation until its first user message.
	PlaceholderTitle = "New conversation"
	// legacyPlaceholderTitle is the placeholder written by earlier clients.
	legacyPlaceholderTitle = "Nova conversa"

	maxTitleLength = 60
)

// IsPlaceholderTitle reports whether title has not been set from a message yet.
func IsPlaceholderTitle(title string) bool {
	return title == "" || title == PlaceholderTitle || title == legacyPlaceholderTitle
}

// TitleFromContent derives a conversation title from a user message:
// whitespace runs collapse to one space, the result is trimmed and cut to
// 60 characters. Returns "" when nothing is left.
func TitleFromContent(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	runes := []rune(title)
	if len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength])
	}
	return title
}

// Normalizer turns loosely shaped records into well-formed conversations.
// Zero-valued fields fall back to uuid ids and the wall clock.
type Normalizer struct {
	DefaultModel string
	NewID        func() string
	Now          func() time.Time
}

func (n Normalizer) id() string {
	if n.NewID != nil {
		return n.NewID()
	}
	return uuid.New().String()
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now().UTC()
	}
	return time.Now().UTC()
}

func (n Normalizer) defaultModel() string {
	if n.DefaultModel != "" {
		return n.DefaultModel
	}
	return "gpt-4o"
}

// NormalizeChat decodes one stored conversation record. It never fails:
// malformed input yields a conversation built from defaults.
func (n Normalizer) NormalizeChat(raw json.RawMessage) Conversation {
	var rc rawChat
	_ = json.Unmarshal(raw, &rc)
	return n.fromRawChat(rc)
}

// NormalizeMessage decodes one stored message record.
func (n Normalizer) NormalizeMessage(raw json.RawMessage) Message {
	var rm rawMessage
	_ = json.Unmarshal(raw, &rm)
	return n.fromRawMessage(rm)
}

func (n Normalizer) fromRawChat(rc rawChat) Conversation {
	now := n.now()
	c := Conversation{
		ID:       rc.ID.Value,
		Title:    rc.Title.Value,
		Model:    rc.Model.Value,
		Messages: make([]Message, 0, len(rc.Messages)),
	}
	if !rc.ID.truthy() {
		c.ID = n.id()
	}
	if !rc.Title.truthy() {
		c.Title = PlaceholderTitle
	}
	if !rc.Model.truthy() {
		c.Model = n.defaultModel()
	}

	c.CreatedAt = now
	if rc.CreatedAt.Valid {
		c.CreatedAt = rc.CreatedAt.Value.UTC()
	}
	c.UpdatedAt = now
	if rc.UpdatedAt.Valid {
		c.UpdatedAt = rc.UpdatedAt.Value.UTC()
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		c.UpdatedAt = c.CreatedAt
	}

	for _, rm := range rc.Messages {
		c.Messages = append(c.Messages, n.fromRawMessage(rm))
	}
	return c
}

func (n Normalizer) fromRawMessage(rm rawMessage) Message {
	m := Message{
		ID:        rm.ID.Value,
		Role:      parseRole(rm.Role),
		Content:   rm.Content.Value,
		CreatedAt: n.now(),
		Type:      parseType(rm.Type),
	}
	if !rm.ID.truthy() {
		m.ID = n.id()
	}
	if rm.CreatedAt.Valid {
		m.CreatedAt = rm.CreatedAt.Value.UTC()
	}
	return m
}

func parseRole(s looseString) Role {
	switch r := Role(s.Value); r {
	case RoleUser, RoleAssistant, RoleSystem:
		return r
	}
	return RoleUser
}

func parseType(s looseString) MessageType {
	switch t := MessageType(s.Value); t {
	case TypeText, TypeImage:
		return t
	}
	return TypeText
}

// NormalizeConversation applies the same defaults to an already typed
// record. Normalizing a normalized conversation returns it unchanged.
func (n Normalizer) NormalizeConversation(c Conversation) Conversation {
	now := n.now()
	out := c.Clone()
	if out.ID == "" {
		out.ID = n.id()
	}
	if out.Title == "" {
		out.Title = PlaceholderTitle
	}
	if out.Model == "" {
		out.Model = n.defaultModel()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = now
	}
	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	if out.UpdatedAt.Before(out.CreatedAt) {
		out.UpdatedAt = out.CreatedAt
	}

	for i, m := range out.Messages {
		out.Messages[i] = n.NormalizeTypedMessage(m)
	}
	return out
}

// NormalizeTypedMessage is NormalizeConversation for a single message.
func (n Normalizer) NormalizeTypedMessage(m Message) Message {
	if m.ID == "" {
		m.ID = n.id()
	}
	m.Role = parseRole(looseString{Value: string(m.Role)})
	m.Type = parseType(looseString{Value: string(m.Type)})
	if m.CreatedAt.IsZero() {
		m.CreatedAt = n.now()
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m
}

// MessageMatch is one hit of SearchMessages.
type MessageMatch struct {
	ConversationID    string
	ConversationTitle string
	MessageIndex      int
	Role              Role
	Preview           string
	CreatedAt         time.Time
}

// SearchMessages finds user and assistant messages containing query,
// case-insensitively, across every conversation.
func SearchMessages(conversations []Conversation, query string) []MessageMatch {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch

	for _, c := range conversations {
		for i, msg := range c.Messages {
			if msg.Role == RoleSystem {
				continue
			}

			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				preview := []rune(msg.Content)
				if len(preview) > 100 {
					preview = append(preview[:100], []rune("...")...)
				}

				matches = append(matches, MessageMatch{
					ConversationID:    c.ID,
					ConversationTitle: c.Title,
					MessageIndex:      i,
					Role:              msg.Role,
					Preview:           string(preview),
					CreatedAt:         msg.CreatedAt,
				})
			}
		}
	}

	return matches
}
