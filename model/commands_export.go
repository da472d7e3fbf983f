package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"multiai/config"
	"multiai/storage"
)

// ExportChatCmd writes a conversation to a JSON file.
func (m *Model) ExportChatCmd(ctx context.Context, chatID, exportPath string) tea.Cmd {
	chat, ok := m.Chat(chatID)
	return func() tea.Msg {
		if !ok {
			return ChatExportedMsg{Err: fmt.Errorf("conversation %q not found", chatID)}
		}

		select {
		case <-ctx.Done():
			return ChatExportedMsg{Err: ctx.Err()}
		default:
		}

		data, err := json.MarshalIndent(chat, "", "  ")
		if err != nil {
			return ChatExportedMsg{Err: err}
		}

		exportPath = config.ExpandPath(exportPath)

		// 0700 dir, 0600 file: exports hold conversation content
		if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
			return ChatExportedMsg{Err: err}
		}
		if err := os.WriteFile(exportPath, data, 0600); err != nil {
			return ChatExportedMsg{Err: err}
		}

		return ChatExportedMsg{Path: exportPath}
	}
}

// ImportChatCmd reads a conversation file. The result goes through the same
// normalization as stored conversations; ChatImported adds it.
func (m *Model) ImportChatCmd(ctx context.Context, filePath string) tea.Cmd {
	normalizer := m.store.Normalizer()
	return func() tea.Msg {
		data, err := os.ReadFile(config.ExpandPath(filePath))
		if err != nil {
			return ChatImportedMsg{Err: fmt.Errorf("failed to read file: %w", err)}
		}

		select {
		case <-ctx.Done():
			return ChatImportedMsg{Err: ctx.Err()}
		default:
		}

		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return ChatImportedMsg{Err: fmt.Errorf("invalid conversation file: %w", err)}
		}

		return ChatImportedMsg{Conversation: normalizer.NormalizeChat(data)}
	}
}

// ChatImported adds an imported conversation and reports the outcome.
func (m *Model) ChatImported(msg ChatImportedMsg) (storage.Conversation, bool) {
	if msg.Err != nil {
		m.notify(Notice{Kind: NoticeError, Title: "Import failed", Body: msg.Err.Error()})
		return storage.Conversation{}, false
	}
	chat := m.AddChat(msg.Conversation)
	m.notify(Notice{Kind: NoticeSuccess, Title: "Conversation imported", Body: chat.Title})
	return chat, true
}

// ChatExported reports the outcome of an export.
func (m *Model) ChatExported(msg ChatExportedMsg) {
	if msg.Err != nil {
		m.notify(Notice{Kind: NoticeError, Title: "Export failed", Body: msg.Err.Error()})
		return
	}
	m.notify(Notice{Kind: NoticeSuccess, Title: "Conversation exported", Body: msg.Path})
}

// SearchMessages finds messages across every conversation.
func (m *Model) SearchMessages(query string) []storage.MessageMatch {
	return storage.SearchMessages(m.chats, query)
}
