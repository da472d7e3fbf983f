package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"multiai/config"
	appmodel "multiai/model"
	"multiai/storage"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model
	notices   *appmodel.NoticeQueue
	keys      *config.KeyBindingsConfig
	version   string

	// UI Components
	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	prefersDark bool
	rendered    map[string]string // markdown cache keyed by message id and width

	showHelp bool

	// Conversation list
	showChatList     bool
	chatList         []storage.Conversation
	selectedChatIdx  int
	chatFilterMode   bool
	chatFilterInput  textinput.Model
	filteredChatList []storage.Conversation

	// Export/import path prompt, opened from the conversation list
	transferMode  transferMode
	transferInput textinput.Model
	transferChat  string

	// Model selector
	showModelSelector bool
	modelList         []modelEntry
	selectedModelIdx  int
	modelFilterMode   bool
	modelFilterInput  textinput.Model
	filteredModelList []modelEntry

	// Settings
	showSettings bool
	settings     settingsState

	// Message search
	showMessageSearch    bool
	messageSearchInput   textinput.Model
	messageSearchResults []storage.MessageMatch
	selectedSearchIdx    int

	highlightedMessageIdx int
	highlightFlashCount   int

	// Pending destructive operation waiting for y/n
	pendingConfirm *appmodel.Confirmation

	// Transient notice shown in the status bar
	notice    *appmodel.Notice
	noticeSeq int
}

// NewAppView builds the main program. notices must be the queue the data
// model was created with.
func NewAppView(dataModel *appmodel.Model, notices *appmodel.NoticeQueue, keys *config.KeyBindingsConfig, version string) AppView {
	if keys == nil {
		keys = config.DefaultKeybindings()
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter inserts a newline, Enter alone sends
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	chatFilterInput := textinput.New()
	chatFilterInput.Prompt = "Filter: "
	chatFilterInput.CharLimit = 64

	modelFilterInput := textinput.New()
	modelFilterInput.Prompt = "Filter: "
	modelFilterInput.CharLimit = 64

	messageSearchInput := textinput.New()
	messageSearchInput.Prompt = "Search: "
	messageSearchInput.CharLimit = 100

	transferInput := textinput.New()
	transferInput.CharLimit = 256
	transferInput.Width = 56

	a := AppView{
		dataModel:             dataModel,
		notices:               notices,
		keys:                  keys,
		version:               version,
		viewport:              viewport.New(0, 0),
		textarea:              ta,
		loadingSpinner:        sp,
		prefersDark:           lipgloss.HasDarkBackground(),
		rendered:              map[string]string{},
		chatFilterInput:       chatFilterInput,
		modelFilterInput:      modelFilterInput,
		messageSearchInput:    messageSearchInput,
		transferInput:         transferInput,
		highlightedMessageIdx: -1,
	}
	a.applyTheme()
	return a
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.dataModel.FetchConfigCmd(),
	)
}

func (a *AppView) applyTheme() {
	ApplyTheme(appmodel.ResolveTheme(a.dataModel.Settings().Theme, a.prefersDark))
	a.rendered = map[string]string{}
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading multiAI..."
	}

	// Layers, top first: confirmation, help, transfer prompt, then one of
	// the list modals, then the chat.
	if a.pendingConfirm != nil {
		return RenderConfirmationModal(ConfirmationState{
			Active:  true,
			Title:   a.pendingConfirm.Title,
			Message: a.pendingConfirm.Message,
		}, a.width, a.height)
	}

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.transferMode != transferNone {
		return a.renderTransferModal()
	}

	if a.showModelSelector {
		return renderModelSelector(a.getModelList(), a.selectedModelIdx, a.dataModel.SelectedModel(), a.modelFilterMode, a.modelFilterInput, len(a.modelList), a.width, a.height)
	}

	if a.showSettings {
		return a.renderSettings()
	}

	if a.showChatList {
		return renderChatList(a.getChatList(), a.selectedChatIdx, a.dataModel.ActiveChatID(), a.chatFilterMode, a.chatFilterInput, len(a.chatList), a.width, a.height)
	}

	if a.showMessageSearch {
		return renderMessageSearch(a.messageSearchInput, a.messageSearchResults, a.selectedSearchIdx, a.width, a.height)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderTitleBar(),
		"",
		a.viewport.View(),
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

func (a AppView) renderTitleBar() string {
	appText := AssistantStyle.Render("multiAI")

	modelName := a.dataModel.SelectedModel()
	if info, ok := a.dataModel.SelectedModelInfo(); ok {
		modelName = info.Name
	}
	modelText := TitleStyle.Render(fmt.Sprintf(" - %s", modelName))

	chatTitle := storage.PlaceholderTitle
	if chat, ok := a.dataModel.ActiveChat(); ok {
		chatTitle = chat.Title
	}
	chatText := UserStyle.Render(fmt.Sprintf(" - %s", chatTitle))

	status := DimStyle.Render(" | " + a.dataModel.APIStatus().Label())
	if !a.dataModel.UsingServerCatalog() {
		status += DimStyle.Render(" | offline catalog")
	}

	return appText + modelText + chatText + status
}

func (a AppView) renderStatusBar() string {
	if a.notice != nil {
		style := AssistantStyle
		switch a.notice.Kind {
		case appmodel.NoticeError:
			style = ErrorStyle
		case appmodel.NoticeSuccess:
			style = UserStyle
		}
		text := style.Bold(true).Render(a.notice.Title)
		if a.notice.Body != "" {
			text += " " + a.notice.Body
		}
		return StatusStyle.Render(text)
	}

	kb := a.keys
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	parts := []string{
		kb.DisplayActionKey("quit"), "Quit",
		kb.DisplayActionKey("new_chat"), "New",
		kb.DisplayActionKey("chat_list"), "Chats",
		kb.DisplayActionKey("model_selector"), "Models",
		kb.DisplayActionKey("search_messages"), "Search",
		kb.DisplayActionKey("settings"), "Settings",
		"Enter", "Send",
		kb.DisplayActionKey("help"), "Help",
	}
	var out []string
	for i := 0; i+1 < len(parts); i += 2 {
		out = append(out, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return StatusStyle.Render(strings.Join(out, "  "))
}

func (a AppView) getChatList() []storage.Conversation {
	if a.chatFilterMode && a.chatFilterInput.Value() != "" {
		return a.filteredChatList
	}
	return a.chatList
}

func (a AppView) getModelList() []modelEntry {
	if a.modelFilterMode && a.modelFilterInput.Value() != "" {
		return a.filteredModelList
	}
	return a.modelList
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showChatList = false
	a.showModelSelector = false
	a.showSettings = false
	a.showMessageSearch = false
	a.transferMode = transferNone

	a.chatFilterMode = false
	a.modelFilterMode = false

	a.chatFilterInput.Blur()
	a.modelFilterInput.Blur()
	a.messageSearchInput.Blur()
	a.transferInput.Blur()
	a.settings.blurAll()

	a.textarea.Focus()
}
