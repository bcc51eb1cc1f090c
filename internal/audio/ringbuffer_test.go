package audio_test

import (
	"sync"
	"testing"

	"github.com/alkime/voicememo/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRingBuffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		capacity  int
		writes    [][]int16
		read      int
		want      []int16
		wantCount int
	}{
		{
			name:      "partial fill",
			capacity:  8,
			writes:    [][]int16{{1, 2, 3}},
			read:      8,
			want:      []int16{1, 2, 3},
			wantCount: 3,
		},
		{
			name:      "newest n",
			capacity:  8,
			writes:    [][]int16{{1, 2}, {3, 4, 5}},
			read:      2,
			want:      []int16{4, 5},
			wantCount: 5,
		},
		{
			name:      "wraps around",
			capacity:  4,
			writes:    [][]int16{{1, 2, 3}, {4, 5, 6}},
			read:      4,
			want:      []int16{3, 4, 5, 6},
			wantCount: 4,
		},
		{
			name:      "write longer than capacity",
			capacity:  3,
			writes:    [][]int16{{1}, {2, 3, 4, 5, 6, 7}},
			read:      3,
			want:      []int16{5, 6, 7},
			wantCount: 3,
		},
		{
			name:      "empty writes ignored",
			capacity:  3,
			writes:    [][]int16{{}, nil, {9}},
			read:      3,
			want:      []int16{9},
			wantCount: 1,
		},
		{
			name:      "zero read",
			capacity:  3,
			writes:    [][]int16{{1, 2}},
			read:      0,
			want:      nil,
			wantCount: 2,
		},
		{
			name:      "negative read",
			capacity:  3,
			writes:    [][]int16{{1, 2}},
			read:      -1,
			want:      nil,
			wantCount: 2,
		},
		{
			name:     "zero capacity",
			capacity: 0,
			writes:   [][]int16{{1, 2}},
			read:     2,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := audio.NewSampleRingBuffer(tt.capacity)
			for _, w := range tt.writes {
				buf.Write(w)
			}

			assert.Equal(t, tt.want, buf.ReadSamples(tt.read))
			assert.Equal(t, tt.wantCount, buf.Count())
		})
	}
}

func TestSampleRingBuffer_Reset(t *testing.T) {
	t.Parallel()

	buf := audio.NewSampleRingBuffer(4)
	buf.Write([]int16{1, 2, 3, 4, 5})
	buf.Reset()

	require.Equal(t, 0, buf.Count())
	require.Nil(t, buf.ReadSamples(4))

	buf.Write([]int16{9})
	require.Equal(t, []int16{9}, buf.ReadSamples(4))
}

func TestSampleRingBuffer_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	buf := audio.NewSampleRingBuffer(64)

	var wg sync.WaitGroup
	wg.Go(func() {
		for i := range 1000 {
			buf.Write([]int16{int16(i), int16(i + 1)})
		}
	})

	for range 4 {
		wg.Go(func() {
			for range 1000 {
				got := buf.ReadSamples(16)
				assert.LessOrEqual(t, len(got), 16)
			}
		})
	}

	wg.Wait()
	assert.Equal(t, 64, buf.Count())
}

func TestBytesToInt16(t *testing.T) {
	t.Parallel()

	assert.Nil(t, audio.BytesToInt16(nil))
	assert.Nil(t, audio.BytesToInt16([]byte{0x01}))
	assert.Equal(t, []int16{256}, audio.BytesToInt16([]byte{0x00, 0x01}))
	assert.Equal(t, []int16{-1, 32767, -32768}, audio.BytesToInt16([]byte{0xFF, 0xFF, 0xFF, 0x7F, 0x00, 0x80}))
	// trailing odd byte dropped
	assert.Equal(t, []int16{1}, audio.BytesToInt16([]byte{0x01, 0x00, 0x02}))
}

func TestInt16ToBytes(t *testing.T) {
	t.Parallel()

	require.Nil(t, audio.Int16ToBytes(nil))

	samples := []int16{0, 1, -1, 32767, -32768}
	require.Equal(t, samples, audio.BytesToInt16(audio.Int16ToBytes(samples)))
	require.Equal(t, []byte{0x00, 0x01}, audio.Int16ToBytes([]int16{256}))
}
