package tui

import (
	"github.com/charmbracelet/lipgloss"
	"tweetscraper/pkg/media"
)

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	errorRed    = lipgloss.Color("#FF0000")
	darkBg      = lipgloss.Color("#0A0E27")
	dimWhite    = lipgloss.Color("#B0B0B0")

	headerStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true).
			Padding(1, 0, 0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonMagenta).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Background(neonMagenta).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(neonCyan).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(neonYellow)

	successStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorRed).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(neonOrange).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimWhite)

	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 0, 0, 1)
)

// resultStyle picks the colour and marker for a resolved image
func resultStyle(r media.Result) (lipgloss.Style, string) {
	switch r {
	case media.Downloaded:
		return successStyle, "✓"
	case media.Existing:
		return dimStyle, "="
	case media.Failed:
		return errorStyle, "✗"
	default:
		return dimStyle, "·"
	}
}
