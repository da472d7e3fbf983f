package model

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"multiai/catalog"
	"multiai/config"
	"multiai/storage"
)

// populateModelSelection picks the selected model from the current
// catalog: the last used model, then the default, then the first listed.
func (m *Model) populateModelSelection() {
	groups := m.modelGroups
	if len(groups) == 0 {
		groups = catalog.Fallback()
		m.modelGroups = groups
	}

	for _, preferred := range []string{m.settings.LastModel, m.defaults.Model} {
		if preferred == "" {
			continue
		}
		if _, ok := catalog.Find(groups, preferred); ok {
			m.selectedModel = preferred
			return
		}
	}

	if first, ok := catalog.First(groups); ok {
		m.selectedModel = first.ID
		return
	}
	m.selectedModel = m.defaults.Model
}

// adoptActiveChatModel selects the active conversation's model when the
// catalog lists it.
func (m *Model) adoptActiveChatModel() {
	chat, ok := m.ActiveChat()
	if !ok || chat.Model == "" {
		return
	}
	if _, ok := catalog.Find(m.modelGroups, chat.Model); ok {
		m.selectedModel = chat.Model
	}
}

// SelectModel changes the selected model and, when a conversation is
// active, that conversation's model. Unknown ids are ignored.
func (m *Model) SelectModel(id string) {
	if _, ok := catalog.Find(m.modelGroups, id); !ok {
		return
	}
	m.selectedModel = id

	m.settings.LastModel = id
	m.store.SaveSettings(m.ctx, m.settings)

	if m.replaceChat(m.currentChatID, func(c *storage.Conversation) {
		c.Model = id
	}) {
		m.saveChats()
	}
}

// SelectedModelInfo returns the catalog entry of the selected model.
func (m *Model) SelectedModelInfo() (catalog.Model, bool) {
	return catalog.Find(m.modelGroups, m.selectedModel)
}

// ApplyConfig merges the server catalog. Server defaults replace the
// temperature and max tokens present in the payload, in memory only; the
// server's default model is selected when the catalog lists it.
func (m *Model) ApplyConfig(cfg *catalog.Config) {
	if cfg == nil {
		return
	}

	if cfg.Providers != nil {
		m.providers = cfg.Providers
	}
	if len(cfg.ModelGroups) > 0 {
		m.modelGroups = cfg.ModelGroups
		m.usingServer = true
	}

	if cfg.Defaults.Model != "" {
		m.defaults.Model = cfg.Defaults.Model
	}
	if cfg.Defaults.HasTemperature() {
		m.defaults.Temperature = cfg.Defaults.Temperature
		m.settings.Temperature = cfg.Defaults.Temperature
	}
	if cfg.Defaults.HasMaxTokens() {
		m.defaults.MaxTokens = cfg.Defaults.MaxTokens
		m.settings.MaxTokens = cfg.Defaults.MaxTokens
	}

	// The server default model wins over the remembered one when listed
	m.populateModelSelection()
	if _, ok := catalog.Find(m.modelGroups, cfg.Defaults.Model); ok {
		m.selectedModel = cfg.Defaults.Model
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] Applied server config: %d providers, %d groups, selected %s",
			len(m.providers), len(m.modelGroups), m.selectedModel)
	}
}

// FetchConfigCmd loads /api/config as a bubbletea command.
func (m *Model) FetchConfigCmd() tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		if client == nil {
			return ConfigLoadedMsg{Err: ErrNoBackend}
		}
		cfg, err := client.FetchConfig(ctx)
		return ConfigLoadedMsg{Config: cfg, Err: err}
	}
}

// ConfigLoaded applies a fetched catalog, or keeps the fallback and tells
// the user why.
func (m *Model) ConfigLoaded(msg ConfigLoadedMsg) {
	if msg.Err != nil || msg.Config == nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Config fetch failed: %v", msg.Err)
		}
		m.notify(Notice{
			Kind:  NoticeError,
			Title: "Sync failed",
			Body:  "Could not load the model list from the server. Using default settings.",
		})
		return
	}
	m.ApplyConfig(msg.Config)
}

// SettingsForm is what the settings screen submits, as typed.
type SettingsForm struct {
	Theme       storage.Theme
	Temperature string
	MaxTokens   string
	APIKeys     map[string]string
}

// SaveSettings applies the form. Unparseable numbers fall back to the
// defaults and API keys are trimmed.
func (m *Model) SaveSettings(form SettingsForm) {
	defaults := storage.DefaultSettings()

	temperature, ok := parseLeadingFloat(form.Temperature)
	if !ok {
		temperature = defaults.Temperature
	}
	maxTokens, ok := parseLeadingInt(form.MaxTokens)
	if !ok {
		maxTokens = defaults.MaxTokens
	}

	settings := m.settings
	settings.Temperature = temperature
	settings.MaxTokens = maxTokens
	settings.Theme = form.Theme
	m.UpdateSettings(settings)
	m.UpdateAPIKeys(form.APIKeys)

	m.notify(Notice{
		Kind:  NoticeSuccess,
		Title: "Preferences saved",
		Body:  "Settings and API keys updated.",
	})
}

// UpdateSettings replaces and persists the settings. An unknown theme
// keeps the current one.
func (m *Model) UpdateSettings(settings storage.Settings) {
	switch settings.Theme {
	case storage.ThemeDark, storage.ThemeLight, storage.ThemeAuto:
	default:
		settings.Theme = m.settings.Theme
	}
	m.settings = settings
	m.store.SaveSettings(m.ctx, m.settings)
}

// UpdateAPIKeys trims and persists the key set. Providers missing from
// keys are stored as not configured.
func (m *Model) UpdateAPIKeys(keys map[string]string) {
	next := storage.DefaultAPIKeys()
	for provider := range next {
		next[provider] = strings.TrimSpace(keys[provider])
	}
	m.apiKeys = next
	m.store.SaveAPIKeys(m.ctx, m.apiKeys)
}

// ToggleTheme flips between dark and light, treating auto as light.
func (m *Model) ToggleTheme() storage.Theme {
	next := storage.ThemeDark
	if m.settings.Theme == storage.ThemeDark {
		next = storage.ThemeLight
	}
	m.settings.Theme = next
	m.store.SaveSettings(m.ctx, m.settings)
	return next
}

// ResolveTheme maps a stored theme to the one to draw with.
func ResolveTheme(theme storage.Theme, prefersDark bool) storage.Theme {
	switch theme {
	case storage.ThemeAuto:
		if prefersDark {
			return storage.ThemeDark
		}
		return storage.ThemeLight
	case storage.ThemeLight:
		return storage.ThemeLight
	}
	return storage.ThemeDark
}

// ProviderKeyStatus is one row of the API key overview.
type ProviderKeyStatus struct {
	ID         string
	Name       string
	Configured bool
}

type APIStatus struct {
	Configured int
	Total      int
	Providers  []ProviderKeyStatus
}

// Label summarises the key overview in one line.
func (s APIStatus) Label() string {
	switch {
	case s.Configured == 0:
		return "Configure your API keys"
	case s.Configured == s.Total:
		return "All APIs configured"
	default:
		return fmt.Sprintf("%d of %d APIs configured", s.Configured, s.Total)
	}
}

// APIStatus reports which providers have a stored key.
func (m *Model) APIStatus() APIStatus {
	status := APIStatus{Total: len(catalog.ProviderIDs)}
	for _, id := range catalog.ProviderIDs {
		configured := m.apiKeys[id] != ""
		if configured {
			status.Configured++
		}
		status.Providers = append(status.Providers, ProviderKeyStatus{
			ID:         id,
			Name:       catalog.ProviderNames[id],
			Configured: configured,
		})
	}
	return status
}

var (
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
)

// parseLeadingFloat reads the number a form field starts with, so "0.9x"
// reads as 0.9.
func parseLeadingFloat(s string) (float64, bool) {
	match := leadingFloat.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	return f, err == nil
}

func parseLeadingInt(s string) (int, bool) {
	match := leadingInt.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	return n, err == nil
}

// Reload re-reads persisted state, for when another process changed it.
func (m *Model) Reload(ctx context.Context) {
	if m.sending {
		return
	}
	m.chats = m.store.LoadChats(ctx)
	m.currentChatID = m.store.LoadCurrentChatID(ctx)
	m.settings = m.store.LoadSettings(ctx)
	m.apiKeys = m.store.LoadAPIKeys(ctx)
	m.populateModelSelection()
	m.EnsureActiveChat()
}
