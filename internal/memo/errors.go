package memo

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned when microphone access was refused.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrAlreadyRecording is returned by Start when a session is live and
	// the start policy is reject.
	ErrAlreadyRecording = errors.New("already recording")
	// ErrNotRecording is returned by Stop when nothing is being recorded.
	ErrNotRecording = errors.New("not recording")
	// ErrAlreadyPlaying is returned when the requested playback is already
	// running.
	ErrAlreadyPlaying = errors.New("recording is already playing")
	// ErrEmptyURI is returned when a recording has no location.
	ErrEmptyURI = errors.New("recording has no uri")
	// ErrRecordingNotFound is returned for an index outside the store.
	ErrRecordingNotFound = errors.New("recording not found")
)

// Kind classifies operation failures.
type Kind int

const (
	RecordingStart Kind = iota + 1
	RecordingStop
	PlaybackLoad
	PlaybackStart
)

func (k Kind) String() string {
	switch k {
	case RecordingStart:
		return "recording start"
	case RecordingStop:
		return "recording stop"
	case PlaybackLoad:
		return "playback load"
	case PlaybackStart:
		return "playback start"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is an operation failure of a given Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func wrap(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}
