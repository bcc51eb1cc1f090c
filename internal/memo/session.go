package memo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alkime/voicememo/internal/audio"
)

// State is the lifecycle state of a RecordingSession.
type State int

const (
	Idle State = iota
	PermissionPending
	Recording
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PermissionPending:
		return "permission pending"
	case Recording:
		return "recording"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StartPolicy decides what Start does while a session is live.
type StartPolicy string

const (
	// StartReject refuses to start while recording.
	StartReject StartPolicy = "reject"
	// StartRestart saves the live recording and starts a new one.
	StartRestart StartPolicy = "restart"
)

func ParseStartPolicy(s string) (StartPolicy, error) {
	switch p := StartPolicy(s); p {
	case "":
		return StartReject, nil
	case StartReject, StartRestart:
		return p, nil
	default:
		return "", fmt.Errorf("unknown start policy %q", s)
	}
}

// Recorder is the slice of the audio platform a session needs.
type Recorder interface {
	ConfigureMode(ctx context.Context, mode audio.Mode) error
	NewRecording(ctx context.Context) (audio.Recording, error)
}

// SessionSnapshot is a point-in-time view of a session.
type SessionSnapshot struct {
	State          State     `json:"-"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	StartedAt      time.Time `json:"-"`
}

// SessionConfig configures a RecordingSession. Zero values are usable.
type SessionConfig struct {
	Policy StartPolicy
	// NewTicker drives the elapsed counter. Defaults to NewTimeTicker.
	NewTicker TickerFunc
	// OnTick is called from the tick goroutine with the new elapsed
	// seconds. It must not call Start, Stop or Close.
	OnTick func(elapsed int)
	// OnFailure is called when a live recording fails on its own.
	OnFailure func(err error)
}

// RecordingSession owns at most one live recording and its elapsed
// seconds counter. Start, Stop and Close are serialized.
type RecordingSession struct {
	recorder Recorder
	gate     *PermissionGate
	conf     SessionConfig

	op sync.Mutex

	mu        sync.RWMutex
	state     State
	elapsed   int
	startedAt time.Time
	rec       audio.Recording

	stopTick context.CancelFunc
	tickWG   sync.WaitGroup
}

func NewRecordingSession(recorder Recorder, gate *PermissionGate, conf SessionConfig) *RecordingSession {
	if conf.Policy == "" {
		conf.Policy = StartReject
	}

	if conf.NewTicker == nil {
		conf.NewTicker = NewTimeTicker
	}

	return &RecordingSession{
		recorder: recorder,
		gate:     gate,
		conf:     conf,
	}
}

// Start begins a new recording. With the restart policy a live recording
// is saved first and returned.
func (s *RecordingSession) Start(ctx context.Context) (*SavedRecording, error) {
	s.op.Lock()
	defer s.op.Unlock()

	var prev *SavedRecording

	if s.currentState() != Idle {
		if s.conf.Policy != StartRestart {
			return nil, wrap(RecordingStart, ErrAlreadyRecording)
		}

		saved, err := s.stopLocked(ctx)
		if err != nil {
			return nil, wrap(RecordingStart, err)
		}

		prev = &saved
	}

	s.setState(PermissionPending)

	granted, err := s.gate.Request(ctx)
	if err != nil {
		s.setState(Idle)
		return prev, wrap(RecordingStart, err)
	}

	if !granted {
		s.setState(Idle)
		return prev, ErrPermissionDenied
	}

	rec, err := s.begin(ctx)
	if err != nil {
		s.setState(Idle)
		return prev, wrap(RecordingStart, err)
	}

	s.mu.Lock()
	s.rec = rec
	s.elapsed = 0
	s.startedAt = time.Now()
	s.state = Recording
	s.mu.Unlock()

	s.startTick(rec)

	slog.Info("recording started")

	return prev, nil
}

// begin configures the audio mode and brings up a recording resource,
// discarding it on any failure.
func (s *RecordingSession) begin(ctx context.Context) (audio.Recording, error) {
	if err := s.recorder.ConfigureMode(ctx, audio.RecordingMode); err != nil {
		return nil, fmt.Errorf("failed to configure audio mode: %w", err)
	}

	rec, err := s.recorder.NewRecording(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	if err := rec.Prepare(ctx); err != nil {
		discard(ctx, rec)
		return nil, fmt.Errorf("failed to prepare recording: %w", err)
	}

	if err := rec.Start(ctx); err != nil {
		discard(ctx, rec)
		return nil, fmt.Errorf("failed to start recording: %w", err)
	}

	return rec, nil
}

// Stop finalizes the live recording.
func (s *RecordingSession) Stop(ctx context.Context) (SavedRecording, error) {
	s.op.Lock()
	defer s.op.Unlock()

	return s.stopLocked(ctx)
}

func (s *RecordingSession) stopLocked(ctx context.Context) (SavedRecording, error) {
	if s.currentState() != Recording {
		return SavedRecording{}, wrap(RecordingStop, ErrNotRecording)
	}

	s.setState(Stopping)
	s.cancelTick()

	s.mu.Lock()
	rec := s.rec
	elapsed := s.elapsed
	s.rec = nil
	s.mu.Unlock()

	uri, err := rec.StopAndFinalize(ctx)

	s.setState(Idle)

	if err != nil {
		discard(ctx, rec)
		return SavedRecording{}, wrap(RecordingStop, err)
	}

	slog.Info("recording stopped", "uri", uri, "seconds", elapsed)

	return SavedRecording{URI: uri, DurationSeconds: elapsed}, nil
}

// Close discards any live recording.
func (s *RecordingSession) Close(ctx context.Context) {
	s.op.Lock()
	defer s.op.Unlock()

	s.cancelTick()

	s.mu.Lock()
	rec := s.rec
	s.rec = nil
	s.state = Idle
	s.mu.Unlock()

	if rec != nil {
		discard(ctx, rec)
	}
}

// Snapshot is safe to call from any goroutine.
func (s *RecordingSession) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionSnapshot{State: s.state, ElapsedSeconds: s.elapsed, StartedAt: s.startedAt}
}

// Levels returns up to n recent samples of the live recording.
func (s *RecordingSession) Levels(n int) []int16 {
	s.mu.RLock()
	rec := s.rec
	s.mu.RUnlock()

	if rec == nil {
		return nil
	}

	return rec.ReadSamples(n)
}

func (s *RecordingSession) startTick(rec audio.Recording) {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopTick = cancel

	ticker := s.conf.NewTicker(time.Second)
	failed := rec.Failed()

	s.tickWG.Go(func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C():
				s.mu.Lock()
				s.elapsed++
				elapsed := s.elapsed
				s.mu.Unlock()

				if s.conf.OnTick != nil {
					s.conf.OnTick(elapsed)
				}

			case err := <-failed:
				// abort needs the op lock, which a concurrent Stop may hold
				// while waiting for this goroutine
				go s.abort(rec, err)
				return
			}
		}
	})
}

// cancelTick stops the tick goroutine and waits for it. Must hold s.op.
func (s *RecordingSession) cancelTick() {
	if s.stopTick == nil {
		return
	}

	s.stopTick()
	s.tickWG.Wait()
	s.stopTick = nil
}

// abort tears down rec after an asynchronous failure, unless it was
// already stopped.
func (s *RecordingSession) abort(rec audio.Recording, cause error) {
	s.op.Lock()

	s.mu.RLock()
	live := s.rec == rec && s.state == Recording
	s.mu.RUnlock()

	if !live {
		s.op.Unlock()
		return
	}

	s.cancelTick()

	s.mu.Lock()
	s.rec = nil
	s.state = Idle
	s.mu.Unlock()

	discard(context.Background(), rec)

	s.op.Unlock()

	slog.Error("recording failed", "error", cause)

	if s.conf.OnFailure != nil {
		s.conf.OnFailure(cause)
	}
}

func (s *RecordingSession) currentState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

func (s *RecordingSession) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
}

func discard(ctx context.Context, rec audio.Recording) {
	if err := rec.Discard(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("failed to discard recording", "error", err)
	}
}
