package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hubpilot/hubpilot/internal/agent"
	"github.com/hubpilot/hubpilot/internal/config"
	"github.com/hubpilot/hubpilot/internal/highlight"
	"github.com/hubpilot/hubpilot/internal/logger"
	"github.com/hubpilot/hubpilot/internal/remote"
	"github.com/hubpilot/hubpilot/internal/workspace"
)

var tuiLog = logger.WithPrefix("TUI")

// Model is the Bubble Tea model of the chat client. It owns the workspace
// snapshot and pushes every navigation change down to the orchestrator;
// conversation content is always re-read from the orchestrator on refresh.
type Model struct {
	width  int
	height int
	ready  bool

	orch    *agent.Orchestrator
	api     remote.API
	scanner *remote.Scanner
	cfg     *config.Config

	ws   workspace.State
	tier config.ModelTier

	viewport  viewport.Model
	textInput textinput.Model
	hl        *highlight.Highlighter

	// panel holds the output of the last navigation command (repository
	// list or file preview), shown between the conversation and the input.
	panel      string
	panelTitle string

	status string

	spinnerFrame int
	quitting     bool
	scanning     bool
}

// NewModel creates the chat client model.
func NewModel(orch *agent.Orchestrator, api remote.API, scanner *remote.Scanner, cfg *config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message or /help..."
	ti.Prompt = "" // the footer renders its own prompt
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 50

	return Model{
		orch:      orch,
		api:       api,
		scanner:   scanner,
		cfg:       cfg,
		tier:      cfg.DefaultTier,
		ws:        workspace.State{ActiveView: workspace.ViewRepositories},
		textInput: ti,
		hl:        highlight.New(true),
	}
}

// Init starts the spinner tick and the orchestrator refresh listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(), m.waitRefresh())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitRefresh blocks on the orchestrator's change signal and re-arms after
// every delivery.
func (m Model) waitRefresh() tea.Cmd {
	notify := m.orch.Notify()
	return func() tea.Msg {
		<-notify
		return refreshMsg{}
	}
}

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 4
		m.resizeViewport()
		if !m.ready {
			m.ready = true
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshMsg:
		m.refreshViewport()
		m.resizeViewport()
		return m, m.waitRefresh()

	case tickMsg:
		if m.orch.IsThinking() || m.scanning {
			m.spinnerFrame++
		}
		return m, tickCmd()

	case reposMsg:
		m.scanning = false
		if msg.err != nil {
			m.status = errorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.showRepoPanel(msg.repos)
		return m, nil

	case fileMsg:
		return m.handleFileLoaded(msg), nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	}

	// Approval keys take over while a call waits for a decision and the
	// input is empty, so typed text containing y or n is never misread.
	if m.orch.State() == agent.StateAwaitingApproval && m.textInput.Value() == "" {
		switch msg.String() {
		case "y", "Y":
			tuiLog.Info("user approved %s", m.pendingName())
			m.orch.ApproveToolCall(context.Background())
			return m, nil
		case "n", "N", "esc":
			tuiLog.Info("user rejected %s", m.pendingName())
			m.orch.RejectToolCall()
			return m, nil
		}
	}

	if msg.String() == "enter" {
		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			return m, nil
		}
		m.textInput.SetValue("")
		m.status = ""

		if strings.HasPrefix(input, "/") {
			return m.handleCommand(input)
		}

		m.orch.SendMessage(context.Background(), input)
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) pendingName() string {
	if pending := m.orch.PendingToolCall(); pending != nil {
		return pending.Name
	}
	return ""
}

// pushWorkspace propagates the local workspace snapshot to the orchestrator.
func (m *Model) pushWorkspace() {
	m.orch.UpdateWorkspace(m.ws)
}

func (m Model) handleFileLoaded(msg fileMsg) Model {
	if msg.err != nil {
		m.status = errorStyle.Render(msg.err.Error())
		return m
	}
	if msg.node.IsDir() {
		m.ws.Path = msg.path
		m.pushWorkspace()
		m.showListingPanel(msg.path, msg.node.Entries)
		return m
	}

	file := msg.node.File
	m.ws.ActiveView = workspace.ViewCode
	m.ws.File = file.Path
	if file.IsBinary {
		m.ws.FileContent = ""
		m.panelTitle = file.Path
		m.panel = toolResultStyle.Render("(binary file)")
	} else {
		m.ws.FileContent = file.Content
		m.panelTitle = file.Path
		m.panel = m.hl.ForPath(file.Path, file.Content)
	}
	m.pushWorkspace()
	return m
}

// IsQuitting reports whether the user asked to exit.
func (m Model) IsQuitting() bool {
	return m.quitting
}
