package cli

import "github.com/charmbracelet/lipgloss"

var (
	AccentColor  = lipgloss.Color("#10B981")
	SubtleColor  = lipgloss.Color("#6B7280")
	ErrorColor   = lipgloss.Color("#EF4444")
	SuccessColor = lipgloss.Color("#22C55E")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor).
			MarginBottom(1)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// CardStyle frames one stat card.
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1).
			Width(24)

	cardValueStyle = lipgloss.NewStyle().Bold(true)
)
