package memo

import (
	"fmt"
	"slices"
	"sync"
)

// SavedRecording is a finished clip. Immutable once created.
type SavedRecording struct {
	URI             string `json:"uri"`
	DurationSeconds int    `json:"durationSeconds"`
}

// StoreMode selects how many recordings the store keeps.
type StoreMode string

const (
	// StoreMany keeps every recording in recording order.
	StoreMany StoreMode = "many"
	// StoreLatest keeps only the most recent recording.
	StoreLatest StoreMode = "latest"
)

func ParseStoreMode(s string) (StoreMode, error) {
	switch m := StoreMode(s); m {
	case "":
		return StoreMany, nil
	case StoreMany, StoreLatest:
		return m, nil
	default:
		return "", fmt.Errorf("unknown store mode %q", s)
	}
}

// RecordingStore is the in-memory list of recordings made in this run.
// There is no removal.
type RecordingStore struct {
	mode StoreMode

	mu         sync.RWMutex
	recordings []SavedRecording
}

func NewRecordingStore(mode StoreMode) *RecordingStore {
	if mode == "" {
		mode = StoreMany
	}

	return &RecordingStore{mode: mode}
}

func (s *RecordingStore) Append(rec SavedRecording) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == StoreLatest {
		s.recordings = []SavedRecording{rec}
		return
	}

	s.recordings = append(s.recordings, rec)
}

// List returns a copy in recording order.
func (s *RecordingStore) List() []SavedRecording {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.recordings)
}

func (s *RecordingStore) Get(i int) (SavedRecording, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.recordings) {
		return SavedRecording{}, false
	}

	return s.recordings[i], true
}

func (s *RecordingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.recordings)
}
