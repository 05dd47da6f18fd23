package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2BB673")).
			MarginTop(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			MarginBottom(1)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BD5A0"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E8B339"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2BB673")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2BB673")).
			Padding(1, 2)
)
