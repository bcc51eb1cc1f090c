// Package notice provides a single button modal for user notices.
package notice

import (
	"github.com/alkime/voicememo/internal/memo"
	"github.com/alkime/voicememo/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var box = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("205")).
	Padding(0, 2)

// Model shows one notice at a time. Notices pushed while one is open
// wait their turn.
type Model struct {
	queue []memo.Notice
	ok    key.Binding
}

func New() Model {
	return Model{
		ok: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "OK"),
		),
	}
}

// Push queues notices.
func (m Model) Push(notices ...memo.Notice) Model {
	m.queue = append(m.queue, notices...)
	return m
}

// Open reports whether a notice is showing.
func (m Model) Open() bool {
	return len(m.queue) > 0
}

// Current returns the notice showing.
func (m Model) Current() (memo.Notice, bool) {
	if !m.Open() {
		return memo.Notice{}, false
	}

	return m.queue[0], true
}

// Update dismisses the current notice on OK. Every other key is swallowed.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !m.Open() {
		return m, nil
	}

	if key.Matches(km, m.ok) {
		m.queue = m.queue[1:]
	}

	return m, nil
}

func (m Model) View() string {
	n, ok := m.Current()
	if !ok {
		return ""
	}

	body := style.Title.Render(n.Title) + "\n\n" +
		n.Message + "\n\n" +
		style.Help.Render("[") + style.Key.Render("enter") + style.Help.Render("] OK")

	return box.Render(body)
}
