package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType determines the title color of a modal
type ModalType int

const (
	ModalTypeInfo ModalType = iota
	ModalTypeWarning
	ModalTypeError
)

func (t ModalType) color() lipgloss.Color {
	switch t {
	case ModalTypeWarning:
		return warningColor
	case ModalTypeError:
		return dangerColor
	}
	return accentColor
}

type ConfirmationState struct {
	Active  bool
	Title   string
	Message string
}

// modalWidthFor clamps the preferred width to the terminal.
func modalWidthFor(preferred, width int) int {
	if width < preferred+10 {
		return width - 10
	}
	return preferred
}

// renderThreeSection draws the borderless modal used everywhere: a colored
// title, a message section and a footer, each separated by a rule.
func renderThreeSection(title string, modalType ModalType, message, footer string, modalWidth, width, height int) string {
	// Centered by hand: lipgloss miscounts some emoji widths
	pad := (modalWidth - runewidth.StringWidth(title)) / 2
	if pad < 0 {
		pad = 0
	}
	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(modalType.color()).
		Width(modalWidth).
		Render(strings.Repeat(" ", pad) + title)

	messageStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	lines := []string{strings.Repeat(" ", modalWidth)}
	for _, line := range strings.Split(message, "\n") {
		lines = append(lines, messageStyle.Render(line))
	}
	lines = append(lines, strings.Repeat(" ", modalWidth))

	messageSection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(modalWidth).
		Render(strings.Join(lines, "\n"))

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, messageSection, footerSection}, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func RenderConfirmationModal(state ConfirmationState, width, height int) string {
	return renderThreeSection(
		state.Title,
		ModalTypeWarning,
		state.Message,
		FormatFooter("y", "Yes", "n", "No"),
		modalWidthFor(60, width),
		width,
		height,
	)
}

// RenderAcknowledgeModal renders a modal that only needs Enter to dismiss
func RenderAcknowledgeModal(title, message string, modalType ModalType, width, height int) string {
	return renderThreeSection(title, modalType, message, "Press Enter to acknowledge", modalWidthFor(60, width), width, height)
}
