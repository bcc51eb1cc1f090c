package audio

import (
	"encoding/binary"
	"sync"
)

// SampleRingBuffer keeps the most recent capture samples for the level
// meter. One goroutine writes; any number may read snapshots.
type SampleRingBuffer struct {
	mu    sync.RWMutex
	buf   []int16
	next  int // index of the next write
	count int
}

func NewSampleRingBuffer(capacity int) *SampleRingBuffer {
	return &SampleRingBuffer{buf: make([]int16, max(capacity, 0))}
}

// Write appends samples, overwriting the oldest once full.
func (b *SampleRingBuffer) Write(samples []int16) {
	size := len(b.buf)
	if len(samples) == 0 || size == 0 {
		return
	}

	// only the tail can survive a write longer than the buffer
	if len(samples) > size {
		samples = samples[len(samples)-size:]
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := copy(b.buf[b.next:], samples)
	copy(b.buf, samples[n:])

	b.next = (b.next + len(samples)) % size
	b.count = min(b.count+len(samples), size)
}

// ReadSamples returns up to n of the newest samples, oldest first.
func (b *SampleRingBuffer) ReadSamples(n int) []int16 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n = min(n, b.count)
	if n <= 0 {
		return nil
	}

	size := len(b.buf)
	start := (b.next - n + size) % size
	out := make([]int16, n)

	c := copy(out, b.buf[start:min(start+n, size)])
	copy(out[c:], b.buf)

	return out
}

// Reset discards all samples.
func (b *SampleRingBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next, b.count = 0, 0
}

func (b *SampleRingBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.count
}

// BytesToInt16 decodes S16LE bytes. A trailing odd byte is ignored.
func BytesToInt16(data []byte) []int16 {
	if len(data) < 2 {
		return nil
	}

	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}

	return out
}

// Int16ToBytes encodes samples as S16LE.
func Int16ToBytes(samples []int16) []byte {
	if len(samples) == 0 {
		return nil
	}

	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}

	return out
}
