package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"multiai/storage"
)

type transferMode int

const (
	transferNone transferMode = iota
	transferExport
	transferImport
)

func (a *AppView) openChatList() {
	a.loadChatList()
	a.showChatList = true
	a.chatFilterMode = false
	a.chatFilterInput.SetValue("")
	a.textarea.Blur()

	for i, c := range a.chatList {
		if c.ID == a.dataModel.ActiveChatID() {
			a.selectedChatIdx = i
			return
		}
	}
	a.selectedChatIdx = 0
}

func (a *AppView) loadChatList() {
	a.chatList = a.dataModel.History()
	a.applyChatFilter()
}

func (a *AppView) applyChatFilter() {
	filterValue := a.chatFilterInput.Value()
	if filterValue == "" {
		a.filteredChatList = a.chatList
	} else {
		targets := make([]string, len(a.chatList))
		for i, c := range a.chatList {
			targets[i] = c.Title
		}
		matches := fuzzy.Find(filterValue, targets)
		a.filteredChatList = make([]storage.Conversation, len(matches))
		for i, match := range matches {
			a.filteredChatList[i] = a.chatList[match.Index]
		}
	}

	list := a.getChatList()
	if a.selectedChatIdx >= len(list) {
		a.selectedChatIdx = len(list) - 1
	}
	if a.selectedChatIdx < 0 {
		a.selectedChatIdx = 0
	}
}

func (a AppView) selectedChat() (storage.Conversation, bool) {
	list := a.getChatList()
	if a.selectedChatIdx < 0 || a.selectedChatIdx >= len(list) {
		return storage.Conversation{}, false
	}
	return list[a.selectedChatIdx], true
}

func (a AppView) handleChatList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.keys

	if a.chatFilterMode {
		switch msg.String() {
		case "esc":
			a.chatFilterMode = false
			a.chatFilterInput.Blur()
			a.chatFilterInput.SetValue("")
			a.applyChatFilter()
			return a, nil
		case "enter":
			return a.activateSelectedChat()
		case kb.GetActionKey("list_down_filtered"), kb.GetActionKey("list_down_arrow"):
			if a.selectedChatIdx < len(a.getChatList())-1 {
				a.selectedChatIdx++
			}
			return a, nil
		case kb.GetActionKey("list_up_filtered"), kb.GetActionKey("list_up_arrow"):
			if a.selectedChatIdx > 0 {
				a.selectedChatIdx--
			}
			return a, nil
		}

		var cmd tea.Cmd
		a.chatFilterInput, cmd = a.chatFilterInput.Update(msg)
		a.applyChatFilter()
		return a, cmd
	}

	switch msg.String() {
	case "esc", kb.GetActionKey("chat_list"):
		a.closeAllModals()
		return a, nil
	case "/":
		a.chatFilterMode = true
		a.chatFilterInput.SetValue("")
		a.chatFilterInput.Focus()
		a.applyChatFilter()
		return a, textinput.Blink
	case kb.GetActionKey("list_down"), kb.GetActionKey("list_down_arrow"):
		if a.selectedChatIdx < len(a.getChatList())-1 {
			a.selectedChatIdx++
		}
		return a, nil
	case kb.GetActionKey("list_up"), kb.GetActionKey("list_up_arrow"):
		if a.selectedChatIdx > 0 {
			a.selectedChatIdx--
		}
		return a, nil
	case "enter":
		return a.activateSelectedChat()
	case "n":
		a.dataModel.CreateChat()
		a.closeAllModals()
		a.updateViewportContent(true)
		return a, nil
	case kb.GetActionKey("list_delete"):
		if chat, ok := a.selectedChat(); ok {
			a.pendingConfirm = a.dataModel.DeleteChat(chat.ID)
		}
		return a, nil
	case "x":
		a.pendingConfirm = a.dataModel.ClearAllHistory()
		return a, a.drainNotices()
	case "e":
		chat, ok := a.selectedChat()
		if !ok {
			return a, nil
		}
		a.transferMode = transferExport
		a.transferChat = chat.ID
		a.transferInput.Prompt = "Export to: "
		a.transferInput.SetValue(defaultExportPath(chat))
		a.transferInput.CursorEnd()
		a.transferInput.Focus()
		return a, textinput.Blink
	case "i":
		a.transferMode = transferImport
		a.transferInput.Prompt = "Import from: "
		a.transferInput.SetValue("~/")
		a.transferInput.CursorEnd()
		a.transferInput.Focus()
		return a, textinput.Blink
	}

	return a, nil
}

func (a AppView) activateSelectedChat() (tea.Model, tea.Cmd) {
	chat, ok := a.selectedChat()
	if !ok {
		return a, nil
	}
	a.dataModel.SetActiveChat(chat.ID)
	a.closeAllModals()
	a.updateViewportContent(true)
	return a, nil
}

func (a AppView) handleTransferMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.transferMode = transferNone
		a.transferInput.Blur()
		return a, nil
	case "enter":
		path := strings.TrimSpace(a.transferInput.Value())
		if path == "" {
			return a, nil
		}
		mode := a.transferMode
		a.transferMode = transferNone
		a.transferInput.Blur()
		if mode == transferExport {
			return a, a.dataModel.ExportChatCmd(a.dataModel.Context(), a.transferChat, path)
		}
		return a, a.dataModel.ImportChatCmd(a.dataModel.Context(), path)
	case a.keys.GetActionKey("clear_input"):
		a.transferInput.SetValue("")
		return a, nil
	}

	var cmd tea.Cmd
	a.transferInput, cmd = a.transferInput.Update(msg)
	return a, cmd
}

func (a AppView) renderTransferModal() string {
	title := "Export Conversation"
	if a.transferMode == transferImport {
		title = "Import Conversation"
	}
	return renderThreeSection(
		title,
		ModalTypeInfo,
		a.transferInput.View(),
		FormatFooter("Enter", "Confirm", "Esc", "Cancel"),
		modalWidthFor(70, a.width),
		a.width,
		a.height,
	)
}

func defaultExportPath(chat storage.Conversation) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '-'
	}, chat.Title)
	name = strings.Trim(name, "-")
	if name == "" {
		name = chat.ID
	}
	if len(name) > 40 {
		name = name[:40]
	}
	return filepath.Join("~", "multiai-"+strings.ToLower(name)+".json")
}

func renderChatList(chats []storage.Conversation, selectedIdx int, activeID string, filterMode bool, filterInput textinput.Model, total, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}

	header := listCountHeader(len(chats), total, "conversation")
	if filterMode {
		header = filterInput.View()
	}

	var rows []string
	start, end := listWindow(len(chats), selectedIdx, height-14)
	for i := start; i < end; i++ {
		chat := chats[i]

		indicator := "  "
		if i == selectedIdx {
			indicator = "▶ "
		}

		rightSide := fmt.Sprintf("%s  %12s  %8s",
			pluralize(len(chat.Messages), "msg"),
			runewidth.Truncate(chat.Model, 12, ""),
			formatTimeAgo(chat.UpdatedAt))

		nameWidth := modalWidth - 8 - runewidth.StringWidth(rightSide)
		if chat.ID == activeID {
			nameWidth -= 10
		}
		name := runewidth.Truncate(chat.Title, nameWidth, "...")

		nameStyled := name
		switch {
		case i == selectedIdx:
			nameStyled = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(name)
		case chat.ID == activeID:
			nameStyled = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(name)
		}
		if chat.ID == activeID {
			nameStyled += DimStyle.Render(" (current)")
			name += " (current)"
		}

		spacing := modalWidth - 4 - len(indicator) - runewidth.StringWidth(name) - runewidth.StringWidth(rightSide)
		if spacing < 1 {
			spacing = 1
		}
		rows = append(rows, indicator+nameStyled+strings.Repeat(" ", spacing)+DimStyle.Render(rightSide))
	}

	emptyMsg := "No conversations yet. Start chatting to create one!"
	if filterMode {
		emptyMsg = "No matches found"
	}

	footer := FormatFooter("Enter", "Open", "n", "New", "d", "Delete", "x", "Clear all", "e", "Export", "i", "Import", "/", "Filter", "Esc", "Close")
	return renderListModal("Conversations", header, rows, emptyMsg, footer, width, height)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Local().Format("Jan 2")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return itoa(n) + " " + noun + "s"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
