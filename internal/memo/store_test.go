package memo_test

import (
	"testing"

	"github.com/alkime/voicememo/internal/memo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingStore_Many(t *testing.T) {
	t.Parallel()

	s := memo.NewRecordingStore(memo.StoreMany)
	a := memo.SavedRecording{URI: "file:///a.flac", DurationSeconds: 1}
	b := memo.SavedRecording{URI: "file:///b.flac", DurationSeconds: 2}

	s.Append(a)
	s.Append(b)

	assert.Equal(t, []memo.SavedRecording{a, b}, s.List())
	assert.Equal(t, 2, s.Len())

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, b, got)

	_, ok = s.Get(2)
	assert.False(t, ok)
	_, ok = s.Get(-1)
	assert.False(t, ok)
}

func TestRecordingStore_Latest(t *testing.T) {
	t.Parallel()

	s := memo.NewRecordingStore(memo.StoreLatest)
	s.Append(memo.SavedRecording{URI: "file:///a.flac", DurationSeconds: 1})
	s.Append(memo.SavedRecording{URI: "file:///b.flac", DurationSeconds: 2})

	assert.Equal(t, []memo.SavedRecording{{URI: "file:///b.flac", DurationSeconds: 2}}, s.List())
}

func TestRecordingStore_ListIsCopy(t *testing.T) {
	t.Parallel()

	s := memo.NewRecordingStore("")
	s.Append(memo.SavedRecording{URI: "file:///a.flac"})

	list := s.List()
	list[0].URI = "changed"

	got, _ := s.Get(0)
	assert.Equal(t, "file:///a.flac", got.URI)
}

func TestParseStoreMode(t *testing.T) {
	t.Parallel()

	m, err := memo.ParseStoreMode("latest")
	require.NoError(t, err)
	assert.Equal(t, memo.StoreLatest, m)

	_, err = memo.ParseStoreMode("all")
	require.Error(t, err)
}
