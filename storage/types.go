package storage

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
)

// Message represents a chat message
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	Type      MessageType `json:"type"`
}

// Conversation is a titled, ordered sequence of messages tied to one model.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages"`
}

// Clone returns a copy that shares no message storage with c.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
	ThemeAuto  Theme = "auto"
)

type Settings struct {
	Theme       Theme   `json:"theme"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
	LastModel   string  `json:"lastModel,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:       ThemeDark,
		Temperature: 0.7,
		MaxTokens:   2000,
	}
}

// APIKeys maps provider id to secret. An empty secret means not configured.
type APIKeys map[string]string

var apiKeyProviders = []string{"openai", "anthropic", "google", "perplexity", "deepseek"}

// DefaultAPIKeys returns every known provider with an empty secret.
func DefaultAPIKeys() APIKeys {
	keys := make(APIKeys, len(apiKeyProviders))
	for _, p := range apiKeyProviders {
		keys[p] = ""
	}
	return keys
}

// Configured counts providers with a non-empty secret.
func (k APIKeys) Configured() int {
	n := 0
	for _, v := range k {
		if v != "" {
			n++
		}
	}
	return n
}

func (k APIKeys) Clone() APIKeys {
	out := make(APIKeys, len(k))
	for p, v := range k {
		out[p] = v
	}
	return out
}
