// Package tui is the terminal screen of the recorder.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alkime/voicememo/internal/memo"
	"github.com/alkime/voicememo/internal/tui/components/labeledspinner"
	"github.com/alkime/voicememo/internal/tui/components/notice"
	"github.com/alkime/voicememo/internal/tui/components/waveform"
	"github.com/alkime/voicememo/internal/tui/style"
	"github.com/alkime/voicememo/pkg/uictl"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// refreshInterval is how often the screen polls the recorder.
const refreshInterval = 250 * time.Millisecond

// levelSamples is how many recent samples feed the level meter.
const levelSamples = 4000

// App is the recorder the screen drives.
type App interface {
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) (memo.SavedRecording, error)
	Play(ctx context.Context, index int) error
	Snapshot() memo.Snapshot
	Levels(n int) []int16
}

// Notices yields notices raised since the last call.
type Notices interface {
	Drain() []memo.Notice
}

// Config holds the screen's collaborators.
type Config struct {
	Cancel  context.CancelFunc
	App     App
	Notices Notices
}

type refreshMsg struct{}

// opDoneMsg reports that a recorder operation finished.
type opDoneMsg struct {
	op  string
	err error
}

type model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	app     App
	notices Notices

	keys     KeyMap
	help     help.Model
	status   labeledspinner.Model
	waveform waveform.Model
	modal    notice.Model

	snap   memo.Snapshot
	cursor int
	busy   bool
	width  int
}

// New creates the recorder screen.
func New(ctx context.Context, config Config) tea.Model {
	app := config.App
	levels := uictl.LevelsFunc[int16](func() []int16 { return app.Levels(levelSamples) })

	return model{
		ctx:      ctx,
		cancel:   config.Cancel,
		app:      app,
		notices:  config.Notices,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		status:   labeledspinner.New(spinner.Points),
		waveform: waveform.New(levels, 40, 2),
		modal:    notice.New(),
		snap:     app.Snapshot(),
		width:    80,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.status.Init(),
		m.waveform.Init(),
		refresh(),
	)
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m.quit()
		}

		if m.modal.Open() {
			var cmd tea.Cmd
			m.modal, cmd = m.modal.Update(msg)
			return m, cmd
		}

		return m.handleKey(msg)

	case refreshMsg:
		m = m.sync()
		cmds = append(cmds, refresh())

	case opDoneMsg:
		m.busy = false
		if msg.err != nil {
			slog.Debug("recorder operation failed", "op", msg.op, "error", msg.err)
		}
		m = m.sync()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(msg)
		cmds = append(cmds, cmd)

	case waveform.TickMsg:
		var cmd tea.Cmd
		m.waveform, cmd = m.waveform.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Recordings)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Start):
		if m.canStart() {
			m.busy = true
			return m, m.run("start", func(ctx context.Context) error {
				return m.app.StartRecording(ctx)
			})
		}

	case key.Matches(msg, m.keys.Stop):
		if m.canStop() {
			m.busy = true
			return m, m.run("stop", func(ctx context.Context) error {
				_, err := m.app.StopRecording(ctx)
				return err
			})
		}

	case key.Matches(msg, m.keys.Play):
		if m.canPlay(m.cursor) {
			index := m.cursor
			return m, m.run("play", func(ctx context.Context) error {
				return m.app.Play(ctx, index)
			})
		}
	}

	return m, nil
}

// run executes op off the update loop.
func (m model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m model) quit() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}

	return m, tea.Quit
}

// sync pulls fresh state and pending notices from the recorder.
func (m model) sync() model {
	m.snap = m.app.Snapshot()

	if m.notices != nil {
		if pending := m.notices.Drain(); len(pending) > 0 {
			m.modal = m.modal.Push(pending...)
		}
	}

	if n := len(m.snap.Recordings); m.cursor >= n {
		m.cursor = max(0, n-1)
	}

	return m
}

func (m model) recording() bool {
	return m.snap.State != memo.Idle
}

func (m model) canStart() bool {
	return !m.busy && !m.recording()
}

func (m model) canStop() bool {
	return !m.busy && m.snap.State == memo.Recording
}

func (m model) canPlay(i int) bool {
	if i < 0 || i >= len(m.snap.Recordings) {
		return false
	}

	if m.snap.Scope == memo.ScopeGlobal {
		return m.snap.Playing == nil
	}

	return !m.snap.IsPlaying(i)
}

func (m model) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("Audio Recorder"))
	sb.WriteString("\n\n")

	if m.modal.Open() {
		sb.WriteString(m.modal.View())
		sb.WriteString("\n")
		return sb.String()
	}

	// Session status
	switch m.snap.State {
	case memo.Recording:
		label := fmt.Sprintf("Recording: %ds", m.snap.ElapsedSeconds)
		sb.WriteString(m.status.ViewStyled(label, style.Error))
		sb.WriteString("\n\n")
		sb.WriteString(m.waveform.View())
	case memo.PermissionPending:
		sb.WriteString(m.status.View("Waiting for microphone permission..."))
	case memo.Stopping:
		sb.WriteString(m.status.View("Saving recording..."))
	default:
		sb.WriteString(style.Subtitle.Render("Not Recording"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(button("r", "Start Recording", m.canStart()) + "  ")
	sb.WriteString(button("s", "Stop Recording", m.canStop()))
	sb.WriteString("\n\n")

	// Recordings
	if len(m.snap.Recordings) == 0 {
		sb.WriteString(style.Muted.Render("No recordings yet."))
		sb.WriteString("\n")
	}

	for i, rec := range m.snap.Recordings {
		cursor := "  "
		if i == m.cursor {
			cursor = style.Bullet.Render("> ")
		}

		label := "Play"
		switch {
		case m.snap.IsPlaying(i):
			label = style.Success.Render("Playing...")
		case m.canPlay(i):
			label = style.Key.Render(label)
		default:
			label = style.Muted.Render(label)
		}

		fmt.Fprintf(&sb, "%s%s  %s\n", cursor,
			style.Label.Render(fmt.Sprintf("Recording %d - %ds", i+1, rec.DurationSeconds)),
			label)
	}

	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))

	return sb.String()
}

func button(k, label string, enabled bool) string {
	if !enabled {
		return style.Muted.Render("[" + k + "] " + label)
	}

	return style.Help.Render("[") + style.Key.Render(k) + style.Help.Render("] "+label)
}
