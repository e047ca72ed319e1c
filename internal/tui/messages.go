package tui

import (
	"time"

	"github.com/hubpilot/hubpilot/internal/remote"
)

// refreshMsg fires whenever the orchestrator's state changed; the model
// re-reads the snapshot accessors and re-renders.
type refreshMsg struct{}

// tickMsg drives the spinner.
type tickMsg time.Time

// reposMsg carries the result of an account scan.
type reposMsg struct {
	repos []remote.Repository
	err   error
}

// fileMsg carries a fetched remote file for the preview panel.
type fileMsg struct {
	path string
	node *remote.Node
	err  error
}
