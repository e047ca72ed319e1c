package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hubpilot/hubpilot/internal/config"
	"github.com/hubpilot/hubpilot/internal/remote"
	"github.com/hubpilot/hubpilot/internal/workspace"
)

const helpText = `Commands:
  /repos                    list your repositories
  /repo <owner>/<name>      open a repository
  /cd <path>                change the browsing path
  /open <path>              preview a file (sets the open file context)
  /context <field> <on|off> toggle disclosure: repo, file, selection
  /model <fast|smart|genius> switch the assistant model
  /reset                    clear the conversation
  /quit                     exit

While a tool call is pending: y approves, n rejects.`

// handleCommand dispatches a slash command typed at the prompt.
func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {

	case "/help":
		m.panelTitle = "help"
		m.panel = helpText
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/repos":
		if m.scanner == nil {
			m.status = errorStyle.Render("GITHUB_TOKEN is not configured")
			return m, nil
		}
		m.scanning = true
		m.status = "Scanning repositories..."
		scanner := m.scanner
		return m, func() tea.Msg {
			repos, err := scanner.Repositories(context.Background())
			return reposMsg{repos: repos, err: err}
		}

	case "/repo":
		if len(args) != 1 {
			m.status = errorStyle.Render("usage: /repo <owner>/<name>")
			return m, nil
		}
		owner, name, ok := strings.Cut(args[0], "/")
		if !ok || owner == "" || name == "" {
			m.status = errorStyle.Render("usage: /repo <owner>/<name>")
			return m, nil
		}
		m.ws = workspace.State{
			ActiveView: workspace.ViewCode,
			Repository: workspace.RepoRef{Owner: owner, Name: name},
		}
		m.pushWorkspace()
		m.status = fmt.Sprintf("Opened %s/%s", owner, name)
		return m, m.loadPath("")

	case "/cd":
		if m.ws.Repository.IsZero() {
			m.status = errorStyle.Render("open a repository first (/repo)")
			return m, nil
		}
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return m, m.loadPath(path)

	case "/open":
		if len(args) != 1 {
			m.status = errorStyle.Render("usage: /open <path>")
			return m, nil
		}
		if m.ws.Repository.IsZero() {
			m.status = errorStyle.Render("open a repository first (/repo)")
			return m, nil
		}
		return m, m.loadPath(args[0])

	case "/context":
		return m.handleContext(args)

	case "/model":
		return m.handleModel(args)

	case "/reset":
		m.orch.Reset()
		m.panel = ""
		m.panelTitle = ""
		m.status = "Conversation cleared"
		return m, nil

	default:
		m.status = errorStyle.Render(fmt.Sprintf("unknown command %s (try /help)", cmd))
		return m, nil
	}
}

func (m Model) handleContext(args []string) (tea.Model, tea.Cmd) {
	if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
		m.status = errorStyle.Render("usage: /context <repo|file|selection> <on|off>")
		return m, nil
	}
	enabled := args[1] == "on"

	policy := m.orch.Policy()
	switch args[0] {
	case "repo":
		policy.IncludeRepoMap = enabled
	case "file":
		policy.IncludeFileContent = enabled
	case "selection":
		policy.IncludeSelection = enabled
	default:
		m.status = errorStyle.Render("usage: /context <repo|file|selection> <on|off>")
		return m, nil
	}

	m.orch.SetPolicy(policy)
	m.cfg.Disclosure = policy
	if err := m.cfg.Save(); err != nil {
		tuiLog.Warn("could not persist disclosure policy: %v", err)
	}
	m.status = fmt.Sprintf("Context %s: %s", args[0], args[1])
	return m, nil
}

func (m Model) handleModel(args []string) (tea.Model, tea.Cmd) {
	if len(args) != 1 {
		m.status = errorStyle.Render("usage: /model <fast|smart|genius>")
		return m, nil
	}

	tier := config.ModelTier(args[0])
	switch tier {
	case config.TierFast, config.TierSmart, config.TierGenius:
	default:
		m.status = errorStyle.Render("usage: /model <fast|smart|genius>")
		return m, nil
	}

	m.tier = tier
	m.orch.SetModel(m.cfg.GetModel(tier))
	m.cfg.DefaultTier = tier
	if err := m.cfg.Save(); err != nil {
		tuiLog.Warn("could not persist model tier: %v", err)
	}
	m.status = fmt.Sprintf("Model: %s (%s)", tier, m.cfg.GetModel(tier))
	return m, nil
}

// loadPath fetches a repository path for the preview panel.
func (m Model) loadPath(path string) tea.Cmd {
	api := m.api
	owner, name := m.ws.Repository.Owner, m.ws.Repository.Name
	return func() tea.Msg {
		node, err := api.GetContent(context.Background(), owner, name, path)
		return fileMsg{path: path, node: node, err: err}
	}
}

func (m *Model) showRepoPanel(repos []remote.Repository) {
	m.ws.ActiveView = workspace.ViewRepositories
	m.pushWorkspace()

	m.panelTitle = fmt.Sprintf("repositories (%d)", len(repos))
	if len(repos) == 0 {
		m.panel = toolResultStyle.Render("(no repositories)")
		m.status = ""
		return
	}

	var b strings.Builder
	for _, r := range repos {
		marker := " "
		if r.Private {
			marker = iconPrivate
		}
		fmt.Fprintf(&b, "%s %s/%s", marker, r.Owner, r.Name)
		if r.Description != "" {
			fmt.Fprintf(&b, "  %s", toolResultStyle.Render(truncate(r.Description, 60)))
		}
		b.WriteString("\n")
	}
	m.panel = strings.TrimRight(b.String(), "\n")
	m.status = ""
}

func (m *Model) showListingPanel(path string, entries []remote.Entry) {
	if path == "" {
		m.panelTitle = m.ws.Repository.FullName()
	} else {
		m.panelTitle = path
	}
	if len(entries) == 0 {
		m.panel = toolResultStyle.Render("(empty directory)")
		m.status = ""
		return
	}

	var b strings.Builder
	for _, entry := range entries {
		if entry.Type == "dir" {
			fmt.Fprintf(&b, "%s/\n", entry.Name)
		} else {
			fmt.Fprintf(&b, "%s\n", entry.Name)
		}
	}
	m.panel = strings.TrimRight(b.String(), "\n")
	m.status = ""
}
