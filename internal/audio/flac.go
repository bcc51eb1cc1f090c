package audio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const (
	flacBlockSize     = 4096
	flacBitsPerSample = 16
)

// FLACWriter encodes mono S16 samples into a FLAC stream. Samples are
// buffered into fixed size blocks; the final partial block is written on
// Close. If the destination implements io.Seeker the stream info (sample
// count, checksum) is patched on Close.
type FLACWriter struct {
	enc        *flac.Encoder
	sampleRate int
	pending    []int16
	total      uint64
}

// NewFLACWriter writes a FLAC header to w and returns a writer for mono
// 16-bit samples at sampleRate.
func NewFLACWriter(w io.Writer, sampleRate int) (*FLACWriter, error) {
	if w == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(sampleRate),
		NChannels:     1,
		BitsPerSample: flacBitsPerSample,
	}

	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)

	return &FLACWriter{
		enc:        enc,
		sampleRate: sampleRate,
		pending:    make([]int16, 0, flacBlockSize),
	}, nil
}

// Write buffers samples and encodes every complete block.
func (fw *FLACWriter) Write(samples []int16) error {
	for len(samples) > 0 {
		n := min(flacBlockSize-len(fw.pending), len(samples))
		fw.pending = append(fw.pending, samples[:n]...)
		samples = samples[n:]

		if len(fw.pending) == flacBlockSize {
			if err := fw.encodeBlock(); err != nil {
				return err
			}
		}
	}

	return nil
}

// Close flushes the final partial block and closes the encoder. The
// encoder also closes w when it implements io.Closer.
func (fw *FLACWriter) Close() error {
	if err := fw.encodeBlock(); err != nil {
		return err
	}

	if err := fw.enc.Close(); err != nil {
		return fmt.Errorf("closing flac encoder: %w", err)
	}

	return nil
}

// Samples returns the number of samples encoded so far.
func (fw *FLACWriter) Samples() uint64 {
	return fw.total
}

// Duration returns the encoded audio length.
func (fw *FLACWriter) Duration() time.Duration {
	return time.Duration(fw.total) * time.Second / time.Duration(fw.sampleRate)
}

func (fw *FLACWriter) encodeBlock() error {
	if len(fw.pending) == 0 {
		return nil
	}

	samples32 := make([]int32, len(fw.pending))
	for i, s := range fw.pending {
		samples32[i] = int32(s)
	}

	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(len(fw.pending)),
			SampleRate:    uint32(fw.sampleRate),
			Channels:      frame.ChannelsMono,
			BitsPerSample: flacBitsPerSample,
		},
		Subframes: []*frame.Subframe{{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples32,
			NSamples:  len(fw.pending),
		}},
	}

	if err := fw.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}

	fw.total += uint64(len(fw.pending))
	fw.pending = fw.pending[:0]

	return nil
}

// PCM is decoded mono 16-bit audio.
type PCM struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the audio length.
func (p PCM) Duration() time.Duration {
	if p.SampleRate <= 0 {
		return 0
	}

	return time.Duration(len(p.Samples)) * time.Second / time.Duration(p.SampleRate)
}

// DecodeFLAC reads a whole FLAC file into memory, downmixing to mono and
// rescaling to 16 bits.
func DecodeFLAC(path string) (PCM, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return PCM{}, fmt.Errorf("failed to open flac file %s: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	pcm := PCM{
		SampleRate: int(info.SampleRate),
		Samples:    make([]int16, 0, info.NSamples),
	}

	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return PCM{}, fmt.Errorf("failed to decode flac frame: %w", err)
		}

		pcm.Samples = append(pcm.Samples, downmix(f.Subframes, int(info.BitsPerSample))...)
	}

	return pcm, nil
}

// Probe returns the duration recorded in a FLAC file's stream info without
// decoding any audio.
func Probe(path string) (time.Duration, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open flac file %s: %w", path, err)
	}
	defer stream.Close()

	if stream.Info.SampleRate == 0 {
		return 0, fmt.Errorf("flac file %s has no sample rate", path)
	}

	return time.Duration(stream.Info.NSamples) * time.Second / time.Duration(stream.Info.SampleRate), nil
}

func downmix(subframes []*frame.Subframe, bitsPerSample int) []int16 {
	if len(subframes) == 0 {
		return nil
	}

	n := subframes[0].NSamples
	out := make([]int16, n)

	for i := range n {
		var sum int64
		for _, sf := range subframes {
			sum += int64(sf.Samples[i])
		}

		out[i] = rescale(sum/int64(len(subframes)), bitsPerSample)
	}

	return out
}

func rescale(s int64, bitsPerSample int) int16 {
	switch {
	case bitsPerSample > 16:
		s >>= bitsPerSample - 16
	case bitsPerSample < 16:
		s <<= 16 - bitsPerSample
	}

	return int16(max(-32768, min(32767, s)))
}
