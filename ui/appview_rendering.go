package ui

import (
	"fmt"
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"multiai/storage"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

const codeBar = "┃"

func (a *AppView) updateViewportContent(gotoBottom bool) {
	chat, ok := a.dataModel.ActiveChat()
	if !ok || len(chat.Messages) == 0 {
		content := "No messages yet. Start chatting!"
		if a.dataModel.IsSending() {
			content = a.loadingSpinner.View() + " Waiting for response..."
		}
		a.viewport.SetContent(content)
		return
	}

	var content strings.Builder

	for i, msg := range chat.Messages {
		highlightPrefix := ""
		if i == a.highlightedMessageIdx && a.highlightFlashCount%2 == 1 {
			highlightPrefix = HighlightStyle.Render(">>> ")
		}

		timestamp := DimStyle.Render(msg.CreatedAt.Local().Format("[15:04]"))

		switch msg.Role {
		case storage.RoleUser:
			content.WriteString(formatUserMessage(highlightPrefix, timestamp, UserStyle.Render("You"), msg.Content))
		case storage.RoleAssistant:
			body := a.renderMessageBody(msg)
			content.WriteString(fmt.Sprintf("%s%s %s\n%s\n\n", highlightPrefix, timestamp, AssistantStyle.Render("Assistant"), body))
		default:
			content.WriteString(fmt.Sprintf("%s%s %s\n%s\n\n", highlightPrefix, timestamp, DimStyle.Render("System"), ErrorStyle.Render(msg.Content)))
		}
	}

	if a.dataModel.IsSending() {
		content.WriteString(fmt.Sprintf("%s %s\n\n", a.loadingSpinner.View(), DimStyle.Render("Waiting for response...")))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// renderMessageBody renders an assistant message, caching the markdown
// output per width.
func (a *AppView) renderMessageBody(msg storage.Message) string {
	if msg.Type == storage.TypeImage {
		return AssistantStyle.Render("[image] ") + urlRegex.ReplaceAllString(msg.Content, "\x1b[31m$1\x1b[0m")
	}

	cacheKey := fmt.Sprintf("%s@%d", msg.ID, a.width)
	if cached, ok := a.rendered[cacheKey]; ok {
		return cached
	}
	out := renderMarkdown(msg.Content, a.width)
	a.rendered[cacheKey] = out
	return out
}

func formatUserMessage(highlightPrefix, timestamp, role, content string) string {
	bar := UserStyle.Render(codeBar)

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s%s %s %s\n", highlightPrefix, bar, timestamp, role))
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

// renderMarkdown renders content for a terminal of the given width.
func renderMarkdown(content string, width int) string {
	if width < 20 {
		width = 80
	}

	// [text](url) becomes the bare url so every link is colored the same way
	content = mdLinkRegex.ReplaceAllString(content, "$2")

	// Autolink off keeps URLs plain so the terminal can make them clickable
	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	r := markdown.NewRenderer(width-4, 0)
	rendered := string(gomarkdown.Render(p.Parse([]byte(content)), r))

	rendered = inlineCodeRegex.ReplaceAllString(rendered, "\x1b[31m$1\x1b[0m")
	rendered = colorURLs(rendered)
	rendered = frameCodeBlocks(rendered, width)

	return strings.TrimRight(rendered, "\n")
}

func colorURLs(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// code blocks keep their own highlighting
		if !strings.Contains(line, codeBar) {
			lines[i] = urlRegex.ReplaceAllString(line, "\x1b[31m$1\x1b[0m")
		}
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the renderer's bar-prefixed code lines with a
// block between two horizontal rules.
func frameCodeBlocks(s string, width int) string {
	const darkGray, reset = "\x1b[90m", "\x1b[0m"

	ruleLen := width - 4
	if ruleLen < 10 {
		ruleLen = 10
	}
	label := "[code]"
	left := (ruleLen - len(label)) / 2
	right := ruleLen - len(label) - left
	top := darkGray + strings.Repeat("━", left) + reset + label + darkGray + strings.Repeat("━", right) + reset
	bottom := darkGray + strings.Repeat("━", ruleLen) + reset

	var result []string
	inCodeBlock := false
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, codeBar) {
			if !inCodeBlock {
				inCodeBlock = true
				result = append(result, "", top, "")
			}
			result = append(result, stripCodeBlockPrefix(line))
			continue
		}
		if inCodeBlock {
			result = append(result, "", bottom, "")
			inCodeBlock = false
		}
		result = append(result, line)
	}
	if inCodeBlock {
		result = append(result, "", bottom, "")
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBar)
	if idx < 0 {
		return line
	}
	after := idx + len(codeBar)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	return line[after:]
}

// stripANSI removes ANSI escape codes for accurate length calculation
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
