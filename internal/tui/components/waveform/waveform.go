// Package waveform draws the live input level of a recording as a bar graph
// with a peak readout underneath.
package waveform

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/alkime/voicememo/internal/tui/style"
	"github.com/alkime/voicememo/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
)

// bars holds the partial block glyphs; index 0 is an empty cell.
var bars = []rune(" ▁▂▃▄▅▆▇█")

// cellSteps is the number of fill steps per row, one per non-empty glyph.
const cellSteps = 8

const frameInterval = 50 * time.Millisecond

// TickMsg triggers a redraw.
type TickMsg struct{}

// Model renders recent samples left (older) to right (newer).
type Model struct {
	levels uictl.Levels[int16]
	width  int
	height int
}

func New(levels uictl.Levels[int16], width, height int) Model {
	return Model{
		levels: levels,
		width:  max(1, width),
		height: max(1, height),
	}
}

func (m Model) Init() tea.Cmd {
	return frame()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, frame()
	}

	return m, nil
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

func (m Model) View() string {
	var samples []int16
	if m.levels != nil {
		samples = m.levels.Read()
	}

	if len(samples) == 0 {
		return m.idle()
	}

	cols := m.columns(samples)
	rows := make([]string, 0, m.height+1)

	for r := range m.height {
		floor := (m.height - 1 - r) * cellSteps

		var line strings.Builder
		for _, fill := range cols {
			line.WriteRune(bars[min(max(fill-floor, 0), cellSteps)])
		}

		rows = append(rows, style.Progress.Render(line.String()))
	}

	rows = append(rows, style.Muted.Render(Readout(peak(samples))))

	return strings.Join(rows, "\n")
}

// idle draws a flat baseline.
func (m Model) idle() string {
	rows := make([]string, m.height)
	for r := range rows {
		glyph := " "
		if r == m.height-1 {
			glyph = string(bars[1])
		}
		rows[r] = style.Muted.Render(strings.Repeat(glyph, m.width))
	}

	return strings.Join(rows, "\n")
}

// columns buckets samples into width columns, each holding a fill level in
// [0, height*cellSteps].
func (m Model) columns(samples []int16) []int {
	cols := make([]int, m.width)
	size := max(1, len(samples)/m.width)
	top := m.height * cellSteps

	i := 0
	for chunk := range slices.Chunk(samples, size) {
		if i == m.width {
			break
		}
		cols[i] = Fill(peak(chunk), top)
		i++
	}

	return cols
}

// Fill maps a peak amplitude to [0, top] on a square-root curve so quiet
// speech still moves the bars.
func Fill(amp int16, top int) int {
	if amp <= 0 {
		return 0
	}

	return min(int(math.Sqrt(float64(amp)/math.MaxInt16)*float64(top)), top)
}

// Readout formats a peak amplitude as dBFS.
func Readout(amp int16) string {
	if amp <= 0 {
		return "peak  -inf dBFS"
	}

	return fmt.Sprintf("peak %5.1f dBFS", 20*math.Log10(float64(amp)/math.MaxInt16))
}

func peak(samples []int16) int16 {
	var p int16
	for _, s := range samples {
		if s == math.MinInt16 {
			return math.MaxInt16
		}
		p = max(p, s, -s)
	}

	return p
}
