package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions
var (
	// Colors
	primaryColor = lipgloss.Color("#3b82f6") // Blue
	accentColor  = lipgloss.Color("#a855f7") // Purple
	successColor = lipgloss.Color("#10b981") // Green
	warningColor = lipgloss.Color("#f59e0b") // Yellow
	errorColor   = lipgloss.Color("#ef4444") // Red
	mutedColor   = lipgloss.Color("#94a3b8") // Muted gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	kindStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	controlStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	selectedStyle = lipgloss.NewStyle().
			Reverse(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	footerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(mutedColor)
)

// Success formats a status line for a finished step
func Success(format string, args ...any) string {
	return successStyle.Render("✓") + " " + fmt.Sprintf(format, args...)
}

// Failure formats a status line for a failed step
func Failure(format string, args ...any) string {
	return errorStyle.Render("✗") + " " + fmt.Sprintf(format, args...)
}

// Warning formats a status line for a non-fatal problem
func Warning(format string, args ...any) string {
	return warningStyle.Render("!") + " " + fmt.Sprintf(format, args...)
}

// Muted renders secondary text
func Muted(s string) string {
	return mutedStyle.Render(s)
}
