package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	ColorHeader    = lipgloss.Color("39")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("255")
	ColorMuted     = lipgloss.Color("241")
	ColorHighlight = lipgloss.Color("212")
	ColorSpinner   = lipgloss.Color("205")
	ColorError     = lipgloss.Color("196")
	ColorOK        = lipgloss.Color("42")
	ColorSelected  = lipgloss.Color("57")
)

// Shared styles.
//
//nolint:gochecknoglobals // Immutable style values.
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeader).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(ColorMuted)

	SelectedStyle = lipgloss.NewStyle().Background(ColorSelected).Foreground(ColorValue)

	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)

	OKStyle = lipgloss.NewStyle().Foreground(ColorOK)

	LabelStyle = lipgloss.NewStyle().Foreground(ColorLabel)

	HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)
)

// borderPadding is the horizontal space taken by BoxStyle's border and padding.
const borderPadding = 4
