package model

import (
	"context"
	"time"

	"github.com/google/uuid"

	"multiai/backend"
	"multiai/catalog"
	"multiai/config"
	"multiai/storage"
)

// ChatClient is the backend surface the manager talks to.
// *backend.Client satisfies it.
type ChatClient interface {
	FetchConfig(ctx context.Context) (*catalog.Config, error)
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
}

// Model holds the conversations, the active pointer and the settings, and
// is the only writer of them. It is not safe for concurrent use: every
// method runs on the bubbletea update loop.
type Model struct {
	// Core dependencies
	store    *storage.Store
	client   ChatClient
	notifier Notifier
	now      func() time.Time
	newID    func() string
	ctx      context.Context

	// Application data
	chats         []storage.Conversation
	currentChatID string
	settings      storage.Settings
	apiKeys       storage.APIKeys
	selectedModel string

	// Catalog from /api/config, or the built-in fallback
	providers   []catalog.Provider
	modelGroups []catalog.ModelGroup
	defaults    catalog.Defaults
	usingServer bool

	// Runtime state
	sending bool
}

type Option func(*Model)

// WithNotifier routes user-visible notices. Without one they are only logged.
func WithNotifier(n Notifier) Option {
	return func(m *Model) {
		m.notifier = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

func WithIDSource(newID func() string) Option {
	return func(m *Model) {
		m.newID = newID
	}
}

// WithDefaultModel sets the model used until the server catalog says otherwise.
func WithDefaultModel(id string) Option {
	return func(m *Model) {
		if id != "" {
			m.defaults.Model = id
		}
	}
}

// WithContext sets the context used for store round-trips.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// New loads persisted state from store. client may be nil, in which case
// sends fail with a system message and the fallback catalog is kept.
// Call EnsureActiveChat once after construction.
func New(store *storage.Store, client ChatClient, opts ...Option) *Model {
	m := &Model{
		store:    store,
		client:   client,
		notifier: NotifierFunc(func(Notice) {}),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		ctx:      context.Background(),
		defaults: catalog.DefaultDefaults(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.chats = store.LoadChats(m.ctx)
	m.currentChatID = store.LoadCurrentChatID(m.ctx)
	m.settings = store.LoadSettings(m.ctx)
	m.apiKeys = store.LoadAPIKeys(m.ctx)
	m.modelGroups = catalog.Fallback()
	m.populateModelSelection()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] Loaded %d conversations, current=%q, model=%s",
			len(m.chats), m.currentChatID, m.selectedModel)
	}

	return m
}

func (m *Model) notify(n Notice) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] Notice (%s): %s - %s", n.Kind, n.Title, n.Body)
	}
	m.notifier.Notify(n)
}

func (m *Model) timestamp() time.Time {
	return m.now().UTC()
}

func (m *Model) newMessage(role storage.Role, content string) storage.Message {
	return storage.Message{
		ID:        m.newID(),
		Role:      role,
		Content:   content,
		CreatedAt: m.timestamp(),
		Type:      storage.TypeText,
	}
}

// Chats returns the conversations in insertion order (newest created first).
func (m *Model) Chats() []storage.Conversation {
	out := make([]storage.Conversation, len(m.chats))
	for i, c := range m.chats {
		out[i] = c.Clone()
	}
	return out
}

// Chat returns a copy of the conversation with the given id.
func (m *Model) Chat(id string) (storage.Conversation, bool) {
	i := m.indexOf(id)
	if i < 0 {
		return storage.Conversation{}, false
	}
	return m.chats[i].Clone(), true
}

// ActiveChat returns the conversation the pointer references.
func (m *Model) ActiveChat() (storage.Conversation, bool) {
	return m.Chat(m.currentChatID)
}

// Context is the context store round-trips and requests run under.
func (m *Model) Context() context.Context {
	return m.ctx
}

func (m *Model) ActiveChatID() string {
	return m.currentChatID
}

// IsSending reports whether a chat request is in flight.
func (m *Model) IsSending() bool {
	return m.sending
}

func (m *Model) Settings() storage.Settings {
	return m.settings
}

func (m *Model) APIKeys() storage.APIKeys {
	return m.apiKeys.Clone()
}

func (m *Model) SelectedModel() string {
	return m.selectedModel
}

func (m *Model) ModelGroups() []catalog.ModelGroup {
	return m.modelGroups
}

func (m *Model) Providers() []catalog.Provider {
	return m.providers
}

func (m *Model) Defaults() catalog.Defaults {
	return m.defaults
}

// UsingServerCatalog reports whether the model list came from /api/config.
func (m *Model) UsingServerCatalog() bool {
	return m.usingServer
}

func (m *Model) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range m.chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// replaceChat applies fn to a copy of the conversation and stores the copy
// back in a fresh slice. Returns false when id is unknown.
func (m *Model) replaceChat(id string, fn func(c *storage.Conversation)) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}

	updated := m.chats[i].Clone()
	fn(&updated)

	chats := make([]storage.Conversation, len(m.chats))
	copy(chats, m.chats)
	chats[i] = updated
	m.chats = chats
	return true
}

func (m *Model) saveChats() {
	m.store.SaveChats(m.ctx, m.chats)
}

func (m *Model) setCurrentChatID(id string) {
	m.currentChatID = id
	m.store.SaveCurrentChatID(m.ctx, id)
}
