package audio

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrModeBusy is returned when switching away from recording mode while
	// a capture is still live.
	ErrModeBusy = errors.New("audio mode busy: a capture is still active")
	// ErrRecordingDisabled is returned when a capture is requested while
	// the current mode does not allow recording.
	ErrRecordingDisabled = errors.New("audio mode does not allow recording")
)

// Mode is the process-wide audio configuration. Only AllowsRecording
// changes behaviour on desktop backends; the remaining flags are kept so
// callers can state the full intent of an operation and so the current
// mode can be reported.
type Mode struct {
	AllowsRecording         bool
	PlaysInSilentMode       bool
	StaysActiveInBackground bool
	DucksOthers             bool
}

var (
	// RecordingMode enables the microphone.
	RecordingMode = Mode{AllowsRecording: true, PlaysInSilentMode: true}
	// PlaybackMode disables the microphone and keeps playing when the
	// app loses focus. Other audio is not ducked.
	PlaybackMode = Mode{PlaysInSilentMode: true, StaysActiveInBackground: true}
)

// ModeSwitch holds the current Mode and the number of live captures.
// Recording and playback modes are mutually exclusive, so callers must
// configure the mode they need before each operation.
type ModeSwitch struct {
	mu       sync.Mutex
	mode     Mode
	captures int
}

// NewModeSwitch starts in PlaybackMode.
func NewModeSwitch() *ModeSwitch {
	return &ModeSwitch{mode: PlaybackMode}
}

// Configure switches to mode. Disabling recording while a capture is live
// fails with ErrModeBusy and leaves the current mode in place.
func (m *ModeSwitch) Configure(mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !mode.AllowsRecording && m.captures > 0 {
		return ErrModeBusy
	}

	if m.mode != mode {
		slog.Debug("audio mode changed", "from", m.mode, "to", mode)
	}

	m.mode = mode

	return nil
}

// Current returns the current mode.
func (m *ModeSwitch) Current() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mode
}

// Captures returns the number of live captures.
func (m *ModeSwitch) Captures() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.captures
}

// acquireCapture registers a live capture. The returned release func is
// idempotent.
func (m *ModeSwitch) acquireCapture() (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.mode.AllowsRecording {
		return nil, ErrRecordingDisabled
	}

	m.captures++

	var once sync.Once

	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.captures--
			m.mu.Unlock()
		})
	}, nil
}
