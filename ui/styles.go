package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"multiai/storage"
)

// palette is the set of ANSI colors a theme draws with. Backgrounds are
// never set so the terminal's transparency is preserved.
type palette struct {
	dim       lipgloss.Color
	accent    lipgloss.Color
	success   lipgloss.Color
	warning   lipgloss.Color
	danger    lipgloss.Color
	highlight lipgloss.Color
}

var (
	darkPalette = palette{
		dim:       lipgloss.Color("7"),
		accent:    lipgloss.Color("12"),
		success:   lipgloss.Color("10"),
		warning:   lipgloss.Color("11"),
		danger:    lipgloss.Color("9"),
		highlight: lipgloss.Color("13"),
	}
	lightPalette = palette{
		dim:       lipgloss.Color("8"),
		accent:    lipgloss.Color("4"),
		success:   lipgloss.Color("2"),
		warning:   lipgloss.Color("3"),
		danger:    lipgloss.Color("1"),
		highlight: lipgloss.Color("5"),
	}
)

var (
	dimColor       lipgloss.Color
	accentColor    lipgloss.Color
	successColor   lipgloss.Color
	warningColor   lipgloss.Color
	dangerColor    lipgloss.Color
	highlightColor lipgloss.Color

	UserStyle      lipgloss.Style
	AssistantStyle lipgloss.Style
	DimStyle       lipgloss.Style
	TitleStyle     lipgloss.Style
	StatusStyle    lipgloss.Style
	SelectedStyle  lipgloss.Style
	HelpStyle      lipgloss.Style
	HighlightStyle lipgloss.Style
	ErrorStyle     lipgloss.Style
)

func init() {
	ApplyTheme(storage.ThemeDark)
}

// ApplyTheme switches the package styles to the palette of theme, which
// must already be resolved (dark or light).
func ApplyTheme(theme storage.Theme) {
	p := darkPalette
	if theme == storage.ThemeLight {
		p = lightPalette
	}

	dimColor = p.dim
	accentColor = p.accent
	successColor = p.success
	warningColor = p.warning
	dangerColor = p.danger
	highlightColor = p.highlight

	UserStyle = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	AssistantStyle = lipgloss.NewStyle().Foreground(accentColor)
	DimStyle = lipgloss.NewStyle().Foreground(dimColor)
	TitleStyle = lipgloss.NewStyle().Bold(true)
	StatusStyle = lipgloss.NewStyle().Foreground(dimColor)
	SelectedStyle = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	HelpStyle = lipgloss.NewStyle().Foreground(dimColor)
	HighlightStyle = lipgloss.NewStyle().Foreground(highlightColor).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(dangerColor)
}

// FormatFooter formats a footer string with alternating keys and descriptions.
// Keys remain default color, descriptions are rendered in accent+bold.
// Usage: FormatFooter("j/k", "Navigate", "Enter", "Select", "Esc", "Close")
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i < len(parts); i += 2 {
		if i+1 < len(parts) {
			result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
		}
	}
	return strings.Join(result, "  ")
}
