package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadingState is a spinner with a message.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState creates a loading state.
func NewLoadingState(message string) *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = HeaderStyle
	return &LoadingState{spinner: s, message: message}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner.
func (l *LoadingState) Update(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// View renders the spinner and message on one line.
func (l *LoadingState) View() string {
	return l.spinner.View() + " " + l.message
}

// RenderLoading returns the string to display for a loading screen.
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return fmt.Sprintf("\n %s\n\n", loading.View())
}
