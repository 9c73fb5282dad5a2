package ui

import "github.com/charmbracelet/lipgloss"

// Standard ANSI colors - works with any terminal colorscheme
var (
	ColorFg     = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	ColorGreen  = lipgloss.Color("2")
	ColorRed    = lipgloss.Color("1")
	ColorYellow = lipgloss.Color("3")
	ColorCyan   = lipgloss.Color("6")
	ColorPurple = lipgloss.Color("5")
	ColorDim    = lipgloss.Color("8")
	ColorBorder = lipgloss.Color("8")
)

// Status indicators
const (
	StatusConnected = "●"
	StatusSuspended = "◌"
)

// Base styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorFg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorDim).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPurple).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	KeyHintStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)
)
