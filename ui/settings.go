package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"multiai/catalog"
	appmodel "multiai/model"
	"multiai/storage"
)

var themeCycle = []storage.Theme{storage.ThemeDark, storage.ThemeLight, storage.ThemeAuto}

// settingsState is the open settings form. Row 0 is the theme, the rest
// map to inputs: temperature, max tokens, then one API key per provider.
type settingsState struct {
	theme       storage.Theme
	inputs      []textinput.Model
	focused     int
	hasChanges  bool
	confirmExit bool
}

const (
	settingsTemperature = iota
	settingsMaxTokens
	settingsFirstKey
)

func newSettingsState(settings storage.Settings, keys storage.APIKeys) settingsState {
	s := settingsState{theme: settings.Theme}

	temperature := textinput.New()
	temperature.CharLimit = 8
	temperature.SetValue(strconv.FormatFloat(settings.Temperature, 'f', -1, 64))

	maxTokens := textinput.New()
	maxTokens.CharLimit = 8
	maxTokens.SetValue(strconv.Itoa(settings.MaxTokens))

	s.inputs = append(s.inputs, temperature, maxTokens)
	for _, id := range catalog.ProviderIDs {
		in := textinput.New()
		in.CharLimit = 256
		in.Width = 48
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
		in.Placeholder = "not set"
		in.SetValue(keys[id])
		s.inputs = append(s.inputs, in)
	}
	return s
}

func (s *settingsState) rows() int {
	return len(s.inputs) + 1
}

func (s *settingsState) focus(row int) {
	s.blurAll()
	s.focused = row
	if row > 0 {
		s.inputs[row-1].Focus()
	}
}

func (s *settingsState) blurAll() {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
}

// form turns the inputs into what the data model validates.
func (s *settingsState) form() appmodel.SettingsForm {
	keys := map[string]string{}
	for i, id := range catalog.ProviderIDs {
		keys[id] = s.inputs[settingsFirstKey+i].Value()
	}
	return appmodel.SettingsForm{
		Theme:       s.theme,
		Temperature: s.inputs[settingsTemperature].Value(),
		MaxTokens:   s.inputs[settingsMaxTokens].Value(),
		APIKeys:     keys,
	}
}

func (a *AppView) openSettings() {
	a.settings = newSettingsState(a.dataModel.Settings(), a.dataModel.APIKeys())
	a.settings.focus(0)
	a.showSettings = true
	a.textarea.Blur()
}

func (a AppView) handleSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &a.settings
	kb := a.keys

	if s.confirmExit {
		switch msg.String() {
		case kb.GetActionKey("confirm_yes"), "Y":
			return a.saveSettings()
		case kb.GetActionKey("confirm_no"), "N":
			a.closeAllModals()
		case "esc":
			s.confirmExit = false
		}
		return a, nil
	}

	switch msg.String() {
	case "esc":
		if s.hasChanges {
			s.confirmExit = true
			return a, nil
		}
		a.closeAllModals()
		return a, nil
	case "ctrl+s":
		return a.saveSettings()
	case "enter":
		if s.focused == s.rows()-1 {
			return a.saveSettings()
		}
		s.focus(s.focused + 1)
		return a, textinput.Blink
	case "tab", kb.GetActionKey("settings_down"):
		s.focus((s.focused + 1) % s.rows())
		return a, textinput.Blink
	case "shift+tab", kb.GetActionKey("settings_up"):
		s.focus((s.focused + s.rows() - 1) % s.rows())
		return a, textinput.Blink
	case kb.GetActionKey("clear_input"):
		if s.focused > 0 {
			s.inputs[s.focused-1].SetValue("")
			s.hasChanges = true
		}
		return a, nil
	}

	if s.focused == 0 {
		switch msg.String() {
		case "left", "h":
			s.theme = cycleTheme(s.theme, -1)
			s.hasChanges = true
		case "right", "l", " ":
			s.theme = cycleTheme(s.theme, 1)
			s.hasChanges = true
		}
		return a, nil
	}

	before := s.inputs[s.focused-1].Value()
	var cmd tea.Cmd
	s.inputs[s.focused-1], cmd = s.inputs[s.focused-1].Update(msg)
	if s.inputs[s.focused-1].Value() != before {
		s.hasChanges = true
	}
	return a, cmd
}

func (a AppView) saveSettings() (tea.Model, tea.Cmd) {
	a.dataModel.SaveSettings(a.settings.form())
	a.applyTheme()
	a.closeAllModals()
	a.updateViewportContent(false)
	return a, a.drainNotices()
}

func cycleTheme(current storage.Theme, step int) storage.Theme {
	idx := 0
	for i, t := range themeCycle {
		if t == current {
			idx = i
		}
	}
	idx = (idx + step + len(themeCycle)) % len(themeCycle)
	return themeCycle[idx]
}

func (a AppView) renderSettings() string {
	s := a.settings
	if s.confirmExit {
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   "Unsaved Changes",
			Message: "Save your changes before closing?",
		}, a.width, a.height)
	}

	modalWidth := modalWidthFor(76, a.width)
	labelStyle := lipgloss.NewStyle().Width(22)
	section := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	row := func(idx int, label, value string) string {
		indicator := "  "
		l := label
		if idx == s.focused {
			indicator = "▶ "
			l = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(label)
		}
		return indicator + labelStyle.Render(l) + value
	}

	var themes []string
	for _, t := range themeCycle {
		name := string(t)
		if t == s.theme {
			name = SelectedStyle.Render("[" + name + "]")
		} else {
			name = DimStyle.Render(" " + name + " ")
		}
		themes = append(themes, name)
	}

	lines := []string{
		section.Render("## Preferences"),
		row(0, "Theme", strings.Join(themes, " ")),
		row(1+settingsTemperature, "Temperature", s.inputs[settingsTemperature].View()),
		row(1+settingsMaxTokens, "Max tokens", s.inputs[settingsMaxTokens].View()),
		"",
		section.Render("## API Keys"),
	}
	for i, id := range catalog.ProviderIDs {
		lines = append(lines, row(1+settingsFirstKey+i, catalog.ProviderNames[id], s.inputs[settingsFirstKey+i].View()))
	}

	status := a.dataModel.APIStatus()
	lines = append(lines, "", DimStyle.Render(status.Label()))
	if info, ok := a.dataModel.SelectedModelInfo(); ok {
		lines = append(lines, DimStyle.Render("Model: "+modelSummary(info)))
	}
	defaults := a.dataModel.Defaults()
	lines = append(lines, DimStyle.Render(fmt.Sprintf("Server defaults: temperature %.1f, %d tokens", defaults.Temperature, defaults.MaxTokens)))

	body := lipgloss.NewStyle().Width(modalWidth).Align(lipgloss.Left).Render(strings.Join(lines, "\n"))

	title := "Settings"
	if s.hasChanges {
		title += " *"
	}
	footer := FormatFooter("Tab", "Next", "←/→", "Theme", "Ctrl+S", "Save", "Esc", "Close")

	titleSection := lipgloss.NewStyle().Bold(true).Align(lipgloss.Center).Width(modalWidth).Render(title)
	bodySection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Padding(1, 2).
		Render(body)
	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, bodySection, footerSection}, "\n")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, content)
}
