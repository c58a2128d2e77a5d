package reporting

import "github.com/charmbracelet/lipgloss"

// Semantic styles for CLI output. Adaptive colors keep the report readable on
// both dark and light terminals; lipgloss degrades to plain text when the
// terminal reports no color support or NO_COLOR is set.
var (
	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"})

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "204"}).
			Bold(true)

	styleWarn = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"})

	styleMuted = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "243", Dark: "246"})
)
