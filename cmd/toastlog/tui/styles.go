package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorBg     = lipgloss.Color("#080808")
	ColorFg     = lipgloss.Color("#D1D1D1")
	ColorNeon   = lipgloss.Color("#00FF9C") // Cyber Green
	ColorBlue   = lipgloss.Color("#00E5FF") // Neon Blue
	ColorPink   = lipgloss.Color("#FF007A") // Neon Pink (Errors)
	ColorBorder = lipgloss.Color("#333333") // Dim Grey
	ColorDimmed = lipgloss.Color("#666666")

	// Styles
	StyleHeader = lipgloss.NewStyle().
			Background(ColorBorder).
			Foreground(ColorNeon).
			Bold(true).
			Padding(0, 1)

	StylePaneBorder = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder)

	StylePaneBorderFocus = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ColorNeon)

	StyleRecordSelected = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(ColorNeon).
				PaddingLeft(1).
				Foreground(ColorNeon)

	StyleRecordDimmed = lipgloss.NewStyle().
				Foreground(ColorFg).
				PaddingLeft(2)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleInputPrefix = lipgloss.NewStyle().
				Foreground(ColorBlue).
				Bold(true)

	StyleUnread = lipgloss.NewStyle().
			Foreground(ColorPink).
			Bold(true)

	StyleStatus = lipgloss.NewStyle().
			Foreground(ColorBlue)

	StyleGridLabel = lipgloss.NewStyle().
			Foreground(ColorBg).
			Background(ColorNeon).
			Bold(true).
			Padding(0, 1)
)
