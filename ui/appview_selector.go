package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"multiai/catalog"
)

// modelEntry is one selectable model with the label of its group.
type modelEntry struct {
	Group string
	Model catalog.Model
}

func flattenGroups(groups []catalog.ModelGroup) []modelEntry {
	var entries []modelEntry
	for _, g := range groups {
		for _, m := range g.Models {
			entries = append(entries, modelEntry{Group: g.Label, Model: m})
		}
	}
	return entries
}

func (a *AppView) loadModelList() {
	a.modelList = flattenGroups(a.dataModel.ModelGroups())
	a.modelFilterMode = false
	a.modelFilterInput.SetValue("")
	a.filteredModelList = a.modelList

	a.selectedModelIdx = 0
	for i, e := range a.modelList {
		if e.Model.ID == a.dataModel.SelectedModel() {
			a.selectedModelIdx = i
			break
		}
	}
}

func (a *AppView) applyModelFilter() {
	filterValue := a.modelFilterInput.Value()
	if filterValue == "" {
		a.filteredModelList = a.modelList
	} else {
		targets := make([]string, len(a.modelList))
		for i, e := range a.modelList {
			targets[i] = e.Group + " " + catalog.Label(e.Model)
		}
		matches := fuzzy.Find(filterValue, targets)
		a.filteredModelList = make([]modelEntry, len(matches))
		for i, match := range matches {
			a.filteredModelList[i] = a.modelList[match.Index]
		}
	}

	list := a.getModelList()
	if a.selectedModelIdx >= len(list) {
		a.selectedModelIdx = len(list) - 1
	}
	if a.selectedModelIdx < 0 {
		a.selectedModelIdx = 0
	}
}

func (a AppView) handleModelSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.keys

	if a.modelFilterMode {
		switch msg.String() {
		case "esc":
			a.modelFilterMode = false
			a.modelFilterInput.Blur()
			a.modelFilterInput.SetValue("")
			a.applyModelFilter()
			return a, nil
		case "enter":
			return a.selectModel()
		case kb.GetActionKey("list_down_filtered"), kb.GetActionKey("list_down_arrow"):
			if a.selectedModelIdx < len(a.getModelList())-1 {
				a.selectedModelIdx++
			}
			return a, nil
		case kb.GetActionKey("list_up_filtered"), kb.GetActionKey("list_up_arrow"):
			if a.selectedModelIdx > 0 {
				a.selectedModelIdx--
			}
			return a, nil
		}

		var cmd tea.Cmd
		a.modelFilterInput, cmd = a.modelFilterInput.Update(msg)
		a.applyModelFilter()
		return a, cmd
	}

	switch msg.String() {
	case "esc", kb.GetActionKey("model_selector"):
		a.closeAllModals()
		return a, nil
	case "/":
		a.modelFilterMode = true
		a.modelFilterInput.SetValue("")
		a.modelFilterInput.Focus()
		a.applyModelFilter()
		return a, textinput.Blink
	case kb.GetActionKey("list_down"), kb.GetActionKey("list_down_arrow"):
		if a.selectedModelIdx < len(a.getModelList())-1 {
			a.selectedModelIdx++
		}
		return a, nil
	case kb.GetActionKey("list_up"), kb.GetActionKey("list_up_arrow"):
		if a.selectedModelIdx > 0 {
			a.selectedModelIdx--
		}
		return a, nil
	case "enter":
		return a.selectModel()
	}

	return a, nil
}

func (a AppView) selectModel() (tea.Model, tea.Cmd) {
	list := a.getModelList()
	if a.selectedModelIdx < 0 || a.selectedModelIdx >= len(list) {
		return a, nil
	}
	a.dataModel.SelectModel(list[a.selectedModelIdx].Model.ID)
	a.closeAllModals()
	return a, nil
}

func renderModelSelector(entries []modelEntry, selectedIdx int, currentModel string, filterMode bool, filterInput textinput.Model, total, width, height int) string {
	modalWidth := width - 10
	if modalWidth > 100 {
		modalWidth = 100
	}

	header := listCountHeader(len(entries), total, "model")
	if filterMode {
		header = filterInput.View()
	}

	groupStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	var rows []string
	start, end := listWindow(len(entries), selectedIdx, height-16)
	lastGroup := ""
	for i := start; i < end; i++ {
		e := entries[i]
		if e.Group != lastGroup {
			rows = append(rows, groupStyle.Render("## "+e.Group))
			lastGroup = e.Group
		}

		indicator := "  "
		if i == selectedIdx {
			indicator = "▶ "
		}

		label := catalog.Label(e.Model)
		if e.Model.ID == currentModel {
			label += " (current)"
		}
		descWidth := modalWidth - 8 - runewidth.StringWidth(label)
		desc := ""
		if descWidth > 10 && e.Model.Description != "" {
			desc = "  " + runewidth.Truncate(e.Model.Description, descWidth, "...")
		}

		line := label
		switch {
		case i == selectedIdx:
			line = lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(label)
		case e.Model.ID == currentModel:
			line = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(label)
		}
		rows = append(rows, fmt.Sprintf("%s%s%s", indicator, line, DimStyle.Render(desc)))
	}

	emptyMsg := "No models available"
	if filterMode {
		emptyMsg = "No matches found"
	}

	footer := FormatFooter("Enter", "Select", "/", "Filter", "Esc", "Close")
	return renderListModal("Select Model", header, rows, emptyMsg, footer, width, height)
}

// modelSummary is the one-line description shown under the title bar of
// the settings screen.
func modelSummary(m catalog.Model) string {
	parts := []string{catalog.Label(m)}
	if m.Description != "" {
		parts = append(parts, m.Description)
	}
	return strings.Join(parts, " - ")
}
