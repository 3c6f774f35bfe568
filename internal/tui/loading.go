package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadingState is a spinner with a message.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState creates a spinner showing "Loading records...".
func NewLoadingState() *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorSpinner)
	return &LoadingState{spinner: s, message: "Loading records..."}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on its tick messages.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// SetMessage changes the text next to the spinner.
func (l *LoadingState) SetMessage(msg string) {
	l.message = msg
}

// Message returns the text next to the spinner.
func (l *LoadingState) Message() string {
	return l.message
}

// Inline renders spinner and message on one line.
func (l *LoadingState) Inline() string {
	return l.spinner.View() + " " + l.message
}

// RenderLoading returns the string to display for a loading screen.
// If loading is nil, it returns the plain text "Loading...".
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return fmt.Sprintf("\n %s\n\n", loading.Inline())
}
