package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hubpilot/hubpilot/internal/agent"
	"github.com/hubpilot/hubpilot/internal/config"
	"github.com/hubpilot/hubpilot/internal/remote"
)

// Run starts the chat client and blocks until the user exits.
func Run(orch *agent.Orchestrator, api remote.API, scanner *remote.Scanner, cfg *config.Config) error {
	model := NewModel(orch, api, scanner, cfg)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	tuiLog.Info("starting chat client")
	_, err := program.Run()
	return err
}
