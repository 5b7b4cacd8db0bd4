package cli

import "github.com/charmbracelet/lipgloss"

// Output styles. lipgloss drops the colors when stdout is not a terminal.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B894")).Bold(true) // Green
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FDCB6E"))            // Yellow
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#636E72"))            // Gray
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A29BFE"))            // Lavender
)
