package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"multiai/storage"
)

func (a AppView) handleMessageSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.keys

	switch msg.String() {
	case "esc":
		a.closeAllModals()
		return a, nil
	case kb.GetActionKey("list_down_filtered"), kb.GetActionKey("list_down_arrow"):
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
		}
		return a, nil
	case kb.GetActionKey("list_up_filtered"), kb.GetActionKey("list_up_arrow"):
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
		}
		return a, nil
	case "enter":
		if a.selectedSearchIdx < 0 || a.selectedSearchIdx >= len(a.messageSearchResults) {
			return a, nil
		}
		match := a.messageSearchResults[a.selectedSearchIdx]
		a.dataModel.SetActiveChat(match.ConversationID)
		a.closeAllModals()

		// Flash the matched message
		a.highlightedMessageIdx = match.MessageIndex
		a.highlightFlashCount = 1
		a.updateViewportContent(false)
		a.scrollToMessage(match.MessageIndex)
		return a, tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
			return flashTickMsg{}
		})
	case kb.GetActionKey("clear_input"):
		a.messageSearchInput.SetValue("")
		a.messageSearchResults = nil
		a.selectedSearchIdx = 0
		return a, nil
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)
	a.messageSearchResults = a.dataModel.SearchMessages(a.messageSearchInput.Value())
	if a.selectedSearchIdx >= len(a.messageSearchResults) {
		a.selectedSearchIdx = 0
	}
	return a, cmd
}

// scrollToMessage moves the viewport so the message at idx is near the top.
func (a *AppView) scrollToMessage(idx int) {
	chat, ok := a.dataModel.ActiveChat()
	if !ok || idx < 0 || idx >= len(chat.Messages) {
		return
	}

	// Approximate the line offset of the message from the rendered bodies before it
	line := 0
	for i := 0; i < idx; i++ {
		msg := chat.Messages[i]
		switch msg.Role {
		case storage.RoleUser:
			line += strings.Count(msg.Content, "\n") + 3
		case storage.RoleAssistant:
			line += strings.Count(a.renderMessageBody(msg), "\n") + 3
		default:
			line += strings.Count(msg.Content, "\n") + 3
		}
	}
	a.viewport.SetYOffset(line)
}

func renderMessageSearch(searchInput textinput.Model, results []storage.MessageMatch, selectedIdx, width, height int) string {
	modalWidth := width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	title := TitleStyle.Render("Search Conversations")

	var resultsView strings.Builder
	if len(results) == 0 {
		if searchInput.Value() == "" {
			resultsView.WriteString(DimStyle.Render("Type to search messages in every conversation..."))
		} else {
			resultsView.WriteString(DimStyle.Render("No matches found"))
		}
	} else {
		// Border, padding, title, input, count and footer take 12 lines;
		// each result takes up to 4 once wrapped
		maxVisible := (height - 16) / 4
		if maxVisible < 1 {
			maxVisible = 1
		}
		start, end := listWindow(len(results), selectedIdx, maxVisible)

		resultsView.WriteString(fmt.Sprintf("Found %d matches:\n\n", len(results)))
		if start > 0 {
			resultsView.WriteString(DimStyle.Render(fmt.Sprintf("↑ %d more above", start)) + "\n\n")
		}

		for i := start; i < end; i++ {
			match := results[i]

			roleStyle := UserStyle
			if match.Role == storage.RoleAssistant {
				roleStyle = AssistantStyle
			}

			matchText := fmt.Sprintf("%s [%s] %s\n  %s",
				roleStyle.Render(match.ConversationTitle),
				match.CreatedAt.Local().Format("Jan 2, 3:04 PM"),
				DimStyle.Render(string(match.Role)),
				match.Preview,
			)

			if i == selectedIdx {
				matchText = SelectedStyle.Render("> ") + matchText
			} else {
				matchText = "  " + matchText
			}
			resultsView.WriteString(matchText + "\n\n")
		}

		if end < len(results) {
			resultsView.WriteString(DimStyle.Render(fmt.Sprintf("↓ %d more below", len(results)-end)))
		}
	}

	footer := FormatFooter("Type", "to search", "↑/↓", "Navigate", "Enter", "Open", "Esc", "Close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		searchInput.View(),
		"",
		resultsView.String(),
		"",
		footer,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}
