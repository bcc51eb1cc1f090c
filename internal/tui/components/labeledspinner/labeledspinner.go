// Package labeledspinner renders a spinner followed by a status line.
package labeledspinner

import (
	"github.com/alkime/voicememo/internal/tui/style"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model displays a spinner next to a label that changes with session state.
type Model struct {
	Spinner spinner.Model
}

// New creates a new labeled spinner.
func New(s spinner.Spinner) Model {
	sp := spinner.New()
	sp.Spinner = s

	return Model{Spinner: sp}
}

// Init returns the initial command for the spinner.
func (ls Model) Init() tea.Cmd {
	return ls.Spinner.Tick
}

// Update handles spinner tick messages.
func (ls Model) Update(teaMsg tea.Msg) (Model, tea.Cmd) {
	if tickMsg, ok := teaMsg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		ls.Spinner, cmd = ls.Spinner.Update(tickMsg)

		return ls, cmd
	}

	return ls, nil
}

// View renders the spinner and label in the subtitle style.
func (ls Model) View(label string) string {
	return ls.ViewStyled(label, style.Subtitle)
}

// ViewStyled renders the spinner and label with st.
func (ls Model) ViewStyled(label string, st lipgloss.Style) string {
	return ls.Spinner.View() + " " + st.Render(label)
}
