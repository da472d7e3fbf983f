package model

import (
	"sort"

	"multiai/config"
	"multiai/storage"
)

// Confirmation is a destructive operation waiting for the user's answer.
// Accept applies it once; dropping it declines.
type Confirmation struct {
	Title   string
	Message string
	apply   func()
}

// Accept applies the pending operation. Later calls do nothing.
func (c *Confirmation) Accept() {
	if c == nil || c.apply == nil {
		return
	}
	apply := c.apply
	c.apply = nil
	apply()
}

// CreateChat inserts an empty conversation at the front of the list using
// the selected model and makes it active.
func (m *Model) CreateChat() storage.Conversation {
	now := m.timestamp()
	chat := storage.Conversation{
		ID:        m.newID(),
		Title:     storage.PlaceholderTitle,
		Model:     m.selectedModel,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []storage.Message{},
	}

	chats := make([]storage.Conversation, 0, len(m.chats)+1)
	chats = append(chats, chat)
	chats = append(chats, m.chats...)
	m.chats = chats

	m.setCurrentChatID(chat.ID)
	m.saveChats()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] Created conversation %s (model %s)", chat.ID, chat.Model)
	}
	return chat.Clone()
}

// DeleteChat asks to remove a conversation. Returns nil for an unknown id.
func (m *Model) DeleteChat(id string) *Confirmation {
	if m.indexOf(id) < 0 {
		return nil
	}

	return &Confirmation{
		Title:   "Delete conversation",
		Message: "Are you sure you want to delete this conversation?",
		apply: func() {
			m.removeChat(id)
		},
	}
}

func (m *Model) removeChat(id string) {
	chats := make([]storage.Conversation, 0, len(m.chats))
	for _, c := range m.chats {
		if c.ID != id {
			chats = append(chats, c)
		}
	}
	m.chats = chats

	if m.currentChatID == id {
		next := ""
		if len(m.chats) > 0 {
			next = m.chats[0].ID
		}
		m.setCurrentChatID(next)
		m.adoptActiveChatModel()
	}

	m.saveChats()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] Deleted conversation %s, active=%q", id, m.currentChatID)
	}
}

// SetActiveChat switches the pointer. Empty or already active ids are ignored.
func (m *Model) SetActiveChat(id string) {
	if id == "" || id == m.currentChatID {
		return
	}
	m.setCurrentChatID(id)
	m.adoptActiveChatModel()
}

// ClearCurrentChat asks to truncate the active conversation's messages.
// Returns nil, after a notice, when there is nothing to clear.
func (m *Model) ClearCurrentChat() *Confirmation {
	chat, ok := m.ActiveChat()
	if !ok {
		return nil
	}
	if len(chat.Messages) == 0 {
		m.notify(Notice{
			Kind:  NoticeInfo,
			Title: "Nothing to clear",
			Body:  "This conversation is already empty.",
		})
		return nil
	}

	id := chat.ID
	return &Confirmation{
		Title:   "Clear conversation",
		Message: "Remove all messages from this conversation?",
		apply: func() {
			if m.replaceChat(id, func(c *storage.Conversation) {
				c.Messages = []storage.Message{}
				c.UpdatedAt = m.timestamp()
			}) {
				m.saveChats()
			}
		},
	}
}

// ClearAllHistory asks to remove every conversation.
// Returns nil, after a notice, when the history is already empty.
func (m *Model) ClearAllHistory() *Confirmation {
	if len(m.chats) == 0 {
		m.notify(Notice{
			Kind:  NoticeInfo,
			Title: "Nothing to delete",
			Body:  "The history is already empty.",
		})
		return nil
	}

	return &Confirmation{
		Title:   "Clear history",
		Message: "Delete the entire conversation history? This cannot be undone.",
		apply: func() {
			m.chats = []storage.Conversation{}
			m.setCurrentChatID("")
			m.saveChats()
			m.notify(Notice{
				Kind:  NoticeSuccess,
				Title: "History cleared",
				Body:  "All conversations were deleted.",
			})
		},
	}
}

// EnsureActiveChat reconciles the pointer with the loaded conversations.
// It runs once at startup: no conversations clears the pointer, a stale
// pointer falls back to the first conversation in insertion order.
func (m *Model) EnsureActiveChat() {
	if len(m.chats) == 0 {
		m.setCurrentChatID("")
		return
	}
	if m.indexOf(m.currentChatID) < 0 {
		if config.DebugLog != nil && m.currentChatID != "" {
			config.DebugLog.Printf("[Model] Stale active pointer %q, falling back to %s", m.currentChatID, m.chats[0].ID)
		}
		m.setCurrentChatID(m.chats[0].ID)
	}
	m.adoptActiveChatModel()
}

// History returns the conversations most recently updated first.
func (m *Model) History() []storage.Conversation {
	out := m.Chats()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// AddChat inserts an already normalized conversation (an import) at the
// front and makes it active. The id is replaced if it collides.
func (m *Model) AddChat(c storage.Conversation) storage.Conversation {
	c = m.store.Normalizer().NormalizeConversation(c)
	if m.indexOf(c.ID) >= 0 {
		c.ID = m.newID()
	}

	chats := make([]storage.Conversation, 0, len(m.chats)+1)
	chats = append(chats, c)
	chats = append(chats, m.chats...)
	m.chats = chats

	m.setCurrentChatID(c.ID)
	m.adoptActiveChatModel()
	m.saveChats()
	return c.Clone()
}
