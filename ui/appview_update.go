package ui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"multiai/config"
	appmodel "multiai/model"
	"multiai/storage"
)

const noticeDuration = 4 * time.Second

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for title (1 line), separator (1 line), textarea (3 lines), and status bar (1 line)
		a.viewport.Width = a.width
		a.viewport.Height = a.height - 6
		a.textarea.SetWidth(a.width)

		a.rendered = map[string]string{}
		a.ready = true
		a.updateViewportContent(true)
		return a, nil

	case spinner.TickMsg:
		if !a.dataModel.IsSending() {
			return a, nil
		}
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		a.updateViewportContent(true)
		return a, cmd

	case chatResponseMsg:
		a.dataModel.FinishSend(msg.Result)
		a.updateViewportContent(true)
		return a, a.drainNotices()

	case configLoadedMsg:
		a.dataModel.ConfigLoaded(msg)
		if a.showModelSelector {
			a.loadModelList()
		}
		return a, a.drainNotices()

	case chatExportedMsg:
		a.dataModel.ChatExported(msg)
		return a, a.drainNotices()

	case chatImportedMsg:
		if _, ok := a.dataModel.ChatImported(msg); ok {
			a.closeAllModals()
			a.updateViewportContent(true)
		}
		return a, a.drainNotices()

	case noticeExpiredMsg:
		if msg.seq == a.noticeSeq {
			a.notice = nil
		}
		return a, nil

	case flashTickMsg:
		if a.highlightFlashCount > 0 && a.highlightFlashCount < 6 {
			a.highlightFlashCount++
			a.updateViewportContent(false)
			return a, tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
				return flashTickMsg{}
			})
		}
		a.highlightedMessageIdx = -1
		a.highlightFlashCount = 0
		a.updateViewportContent(false)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		if a.pendingConfirm != nil {
			return a.handleConfirmation(msg)
		}

		if a.showHelp {
			switch msg.String() {
			case "esc", a.keys.GetActionKey("help"):
				a.showHelp = false
			}
			return a, nil
		}

		if a.transferMode != transferNone {
			return a.handleTransferMode(msg)
		}
		if a.showModelSelector {
			return a.handleModelSelector(msg)
		}
		if a.showSettings {
			return a.handleSettings(msg)
		}
		if a.showChatList {
			return a.handleChatList(msg)
		}
		if a.showMessageSearch {
			return a.handleMessageSearch(msg)
		}

		if handled, model, cmd := a.handleMainKey(msg); handled {
			return model, cmd
		}
	}

	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// handleMainKey handles shortcuts of the chat screen. Keys it does not
// claim go to the textarea.
func (a AppView) handleMainKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	kb := a.keys

	switch msg.String() {
	case kb.GetActionKey("quit"):
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Quit requested")
		}
		return true, a, tea.Quit

	case kb.GetActionKey("help"):
		a.showHelp = true
		return true, a, nil

	case "enter":
		cmd := a.dataModel.SendMessageCmd(a.textarea.Value())
		if cmd == nil {
			return true, a, nil
		}
		a.textarea.Reset()
		a.updateViewportContent(true)
		return true, a, tea.Batch(cmd, a.loadingSpinner.Tick)

	case kb.GetActionKey("new_chat"):
		a.dataModel.CreateChat()
		a.updateViewportContent(true)
		return true, a, nil

	case kb.GetActionKey("chat_list"):
		a.openChatList()
		return true, a, nil

	case kb.GetActionKey("model_selector"):
		a.loadModelList()
		a.showModelSelector = true
		a.textarea.Blur()
		return true, a, nil

	case kb.GetActionKey("search_messages"):
		a.showMessageSearch = true
		a.messageSearchInput.SetValue("")
		a.messageSearchResults = nil
		a.selectedSearchIdx = 0
		a.messageSearchInput.Focus()
		a.textarea.Blur()
		return true, a, textinput.Blink

	case kb.GetActionKey("settings"):
		a.openSettings()
		return true, a, textinput.Blink

	case kb.GetActionKey("delete_chat"):
		a.pendingConfirm = a.dataModel.DeleteChat(a.dataModel.ActiveChatID())
		return true, a, a.drainNotices()

	case kb.GetActionKey("clear_chat"):
		a.pendingConfirm = a.dataModel.ClearCurrentChat()
		return true, a, a.drainNotices()

	case kb.GetActionKey("clear_history"):
		a.pendingConfirm = a.dataModel.ClearAllHistory()
		return true, a, a.drainNotices()

	case kb.GetActionKey("toggle_theme"):
		a.dataModel.ToggleTheme()
		a.applyTheme()
		a.updateViewportContent(false)
		return true, a, nil

	case kb.GetActionKey("reload_config"):
		return true, a, a.dataModel.FetchConfigCmd()

	case kb.GetActionKey("yank_last_response"):
		return true, a, a.yankLastResponse()

	case kb.GetActionKey("scroll_down"):
		a.viewport.HalfPageDown()
		return true, a, nil
	case kb.GetActionKey("scroll_up"):
		a.viewport.HalfPageUp()
		return true, a, nil
	case kb.GetActionKey("page_down"):
		a.viewport.PageDown()
		return true, a, nil
	case kb.GetActionKey("page_up"):
		a.viewport.PageUp()
		return true, a, nil
	case kb.GetActionKey("scroll_to_top"):
		a.viewport.GotoTop()
		return true, a, nil
	case kb.GetActionKey("scroll_to_bottom"):
		a.viewport.GotoBottom()
		return true, a, nil

	case kb.GetActionKey("clear_input"):
		a.textarea.Reset()
		return true, a, nil
	}

	return false, a, nil
}

func (a AppView) handleConfirmation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case a.keys.GetActionKey("confirm_yes"), "Y":
		confirm := a.pendingConfirm
		a.pendingConfirm = nil
		confirm.Accept()
		if a.showChatList {
			a.loadChatList()
		}
		a.updateViewportContent(true)
		return a, a.drainNotices()

	case a.keys.GetActionKey("confirm_no"), "N", "esc":
		a.pendingConfirm = nil
	}
	return a, nil
}

// yankLastResponse copies the newest assistant message of the active
// conversation.
func (a *AppView) yankLastResponse() tea.Cmd {
	chat, ok := a.dataModel.ActiveChat()
	if !ok {
		return nil
	}
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		if chat.Messages[i].Role != storage.RoleAssistant {
			continue
		}
		if err := clipboard.WriteAll(chat.Messages[i].Content); err != nil {
			return a.showNotice(appmodel.Notice{Kind: appmodel.NoticeError, Title: "Copy failed", Body: err.Error()})
		}
		return a.showNotice(appmodel.Notice{Kind: appmodel.NoticeSuccess, Title: "Copied", Body: "Last response copied to the clipboard."})
	}
	return nil
}

// drainNotices shows the newest queued notice.
func (a *AppView) drainNotices() tea.Cmd {
	if a.notices == nil {
		return nil
	}
	pending := a.notices.Drain()
	if len(pending) == 0 {
		return nil
	}
	return a.showNotice(pending[len(pending)-1])
}

func (a *AppView) showNotice(n appmodel.Notice) tea.Cmd {
	a.noticeSeq++
	a.notice = &n
	seq := a.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}
