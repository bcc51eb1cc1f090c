package notice_test

import (
	"testing"

	"github.com/alkime/voicememo/internal/memo"
	"github.com/alkime/voicememo/internal/tui/components/notice"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gochecknoinits // recommend for CI by bubbletea folks
func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestNotice_Queue(t *testing.T) {
	t.Parallel()

	m := notice.New()
	assert.False(t, m.Open())
	assert.Empty(t, m.View())

	m = m.Push(
		memo.Notice{Title: "Recording Saved", Message: "File saved at: file:///a.flac"},
		memo.Notice{Title: "Error", Message: "Failed to play recording."},
	)
	require.True(t, m.Open())
	assert.Contains(t, m.View(), "Recording Saved")
	assert.Contains(t, m.View(), "[enter] OK")

	// other keys do nothing
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Contains(t, m.View(), "Recording Saved")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.View(), "Failed to play recording.")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Open())
}
