package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// listWindow returns the slice of rows to draw so the selection stays
// near the middle of a list taller than maxLines.
func listWindow(total, selectedIdx, maxLines int) (int, int) {
	if maxLines < 1 {
		maxLines = 1
	}
	if total <= maxLines {
		return 0, total
	}
	switch {
	case selectedIdx < maxLines/2:
		return 0, maxLines
	case selectedIdx >= total-maxLines/2:
		return total - maxLines, total
	default:
		start := selectedIdx - maxLines/2
		return start, start + maxLines
	}
}

// renderListModal draws the picker layout shared by the conversation list
// and the model selector: title, header rule, rows and footer.
func renderListModal(title, header string, rows []string, emptyMsg, footer string, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(title)

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	if len(rows) == 0 {
		rows = []string{lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg)}
	}

	listSection := lipgloss.NewStyle().
		Width(modalWidth).
		Padding(0, 2).
		Render(strings.Join(rows, "\n"))

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, headerSection, listSection, footerSection}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// listCountHeader reads "3 chats" or "2 of 3 chats".
func listCountHeader(shown, total int, noun string) string {
	if shown == total {
		return pluralize(total, noun)
	}
	return strings.Join([]string{itoa(shown), "of", pluralize(total, noun)}, " ")
}
