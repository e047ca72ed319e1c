package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/hubpilot/hubpilot/internal/llm"
	"github.com/hubpilot/hubpilot/internal/tools"
)

const maxResultLines = 20

// View renders the full screen: header, conversation, optional panel and
// approval box, footer.
func (m Model) View() string {
	if !m.ready {
		return "Starting hubpilot..."
	}
	if m.quitting {
		return "Goodbye.\n"
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.viewport.View())

	if m.panel != "" {
		sections = append(sections, m.renderPanel())
	}
	if approval := m.renderApproval(); approval != "" {
		sections = append(sections, approval)
	}

	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m *Model) resizeViewport() {
	chrome := 2 // header + footer
	if m.panel != "" {
		chrome += strings.Count(m.renderPanel(), "\n") + 1
	}
	if approval := m.renderApproval(); approval != "" {
		chrome += strings.Count(approval, "\n") + 1
	}

	height := m.height - chrome
	if height < 3 {
		height = 3
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.width, height)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = height
	}
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderHeader() string {
	title := headerTitleStyle.Render("hubpilot")

	repo := headerDimStyle.Render("no repository")
	if !m.ws.Repository.IsZero() {
		repo = headerRepoStyle.Render(m.ws.Repository.FullName())
	}

	model := headerDimStyle.Render(string(m.tier))
	state := headerDimStyle.Render(m.orch.State().String())

	line := fmt.Sprintf("%s  %s  %s  %s", title, repo, model, state)
	return headerStyle.Width(m.width).Render(line)
}

func (m Model) renderFooter() string {
	prompt := inputPromptStyle.Render(iconUser + " ")

	indicator := ""
	if m.orch.IsThinking() || m.scanning {
		indicator = spinnerStyle.Render(spinnerFrame(m.spinnerFrame)) + " "
	}

	line := indicator + prompt + m.textInput.View()
	if m.status != "" {
		line += "  " + statusStyle.Render(m.status)
	}
	return footerStyle.Width(m.width).Render(line)
}

func (m Model) renderPanel() string {
	title := panelTitleStyle.Render("── " + m.panelTitle + " ──")
	body := m.panel
	if lines := strings.Split(body, "\n"); len(lines) > maxResultLines {
		body = strings.Join(lines[:maxResultLines], "\n") +
			"\n" + toolResultStyle.Render(fmt.Sprintf("... (%d more lines)", len(lines)-maxResultLines))
	}
	return title + "\n" + body
}

func (m Model) renderApproval() string {
	pending := m.orch.PendingToolCall()
	if pending == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", iconToolCall, toolCallStyle.Render(pending.Name))
	for _, key := range argOrder(pending.Args) {
		val := fmt.Sprintf("%v", pending.Args[key])
		fmt.Fprintf(&b, "  %s: %s\n", key, truncate(val, 120))
	}
	b.WriteString(approvalKeysStyle.Render("approve? [y]es / [n]o"))

	return approvalBoxStyle.Width(m.width - 2).Render(b.String())
}

// argOrder lists tool arguments in a stable, readable order.
func argOrder(args map[string]any) []string {
	preferred := []string{"owner", "repo", "path", "message", "search", "replace", "content"}
	var keys []string
	seen := map[string]bool{}
	for _, k := range preferred {
		if _, ok := args[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for k := range args {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// renderConversation turns the orchestrator's history into styled text.
func (m Model) renderConversation() string {
	turns := m.orch.Turns()
	if len(turns) == 0 {
		return assistantStyle.Render("Ask about your repositories, or /help for commands.")
	}

	// Paths of proposed read_file calls, for highlighting their results.
	readPaths := map[string]string{}
	for _, turn := range turns {
		for _, call := range turn.Calls {
			if call.Name == tools.ReadFile {
				if p, ok := call.Args["path"].(string); ok {
					readPaths[call.ID] = p
				}
			}
		}
	}

	var b strings.Builder
	for _, turn := range turns {
		switch turn.Kind {

		case llm.TurnUser:
			b.WriteString(userPrefixStyle.Render(iconUser+" ") + userStyle.Render(turn.Text))
			b.WriteString("\n\n")

		case llm.TurnModel:
			if turn.Text != "" {
				b.WriteString(assistantStyle.Render(m.hl.MarkdownCodeBlocks(turn.Text)))
				b.WriteString("\n")
			}
			for _, call := range turn.Calls {
				b.WriteString(toolCallStyle.Render(fmt.Sprintf("%s %s", iconToolCall, call.Name)))
				if p, ok := call.Args["path"].(string); ok {
					b.WriteString(toolResultStyle.Render(" " + p))
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")

		case llm.TurnSystem:
			b.WriteString(systemStyle.Render(turn.Text))
			b.WriteString("\n\n")

		case llm.TurnFunctionResult:
			b.WriteString(m.renderResult(turn, readPaths))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderResult(turn llm.Turn, readPaths map[string]string) string {
	text := turn.Result

	isError := strings.HasPrefix(text, "Error: ")
	if !isError {
		if path, ok := readPaths[turn.CallID]; ok {
			text = m.hl.ForPath(path, text)
		}
	}

	lines := strings.Split(text, "\n")
	if len(lines) > maxResultLines {
		omitted := len(lines) - maxResultLines
		lines = append(lines[:maxResultLines], fmt.Sprintf("... (%d more lines)", omitted))
	}

	style := toolResultStyle
	if isError {
		style = toolErrorStyle
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(style.Render(iconIndent+" ") + line + "\n")
	}
	return b.String()
}
