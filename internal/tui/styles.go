package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	primaryColor = lipgloss.Color("39")  // Cyan
	successColor = lipgloss.Color("82")  // Green
	warningColor = lipgloss.Color("214") // Orange
	errorColor   = lipgloss.Color("196") // Red
	dimColor     = lipgloss.Color("240") // Gray
	userColor    = lipgloss.Color("255") // White
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	headerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	headerRepoStyle = lipgloss.NewStyle().
			Foreground(successColor)

	headerDimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(successColor).
				Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	userPrefixStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(userColor).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	systemStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Italic(true)

	toolCallStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	toolResultStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	toolErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	approvalBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(warningColor).
				Padding(0, 1)

	approvalKeysStyle = lipgloss.NewStyle().
				Foreground(dimColor)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)

// Icons
const (
	iconToolCall = "⚡"
	iconError    = "✗"
	iconUser     = ">"
	iconIndent   = "│"
	iconPrivate  = "🔒"
)

// Spinner frames (braille pattern)
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func spinnerFrame(frame int) string {
	return spinnerFrames[frame%len(spinnerFrames)]
}

// truncate shortens a string to maxLen characters, adding "..." if cut.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
