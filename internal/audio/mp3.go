package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// mp3BatchSamples is 2048 mono samples, 128ms @ 16kHz.
const mp3BatchSamples = 2048

// mp3Encoder reads mono samples from a channel, buffers them into batches
// and encodes each batch to MP3 on w.
type mp3Encoder struct {
	sampleRate int
	input      <-chan []int16
	output     io.Writer

	encoder *mp3encoder.Encoder
	buffer  []int16

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

func newMP3Encoder(sampleRate int, input <-chan []int16, output io.Writer) (*mp3Encoder, error) {
	if input == nil {
		return nil, errors.New("input channel cannot be nil")
	}

	if output == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}

	return &mp3Encoder{
		sampleRate: sampleRate,
		input:      input,
		output:     output,
		buffer:     make([]int16, 0, mp3BatchSamples),
	}, nil
}

func (e *mp3Encoder) Start(ctx context.Context) error {
	if e.encoder != nil {
		return errors.New("encoder already started")
	}

	// shine-mp3 mis-steps mono input, so encode as stereo with L=R
	e.encoder = mp3encoder.NewEncoder(e.sampleRate, 2)

	e.wg.Go(func() {
		for {
			select {
			case samples, ok := <-e.input:
				if !ok {
					if err := e.encodeBatch(); err != nil {
						e.setError(fmt.Errorf("failed to flush mp3 encoder: %w", err))
					}
					return
				}

				e.buffer = append(e.buffer, samples...)

				if len(e.buffer) >= mp3BatchSamples {
					if err := e.encodeBatch(); err != nil {
						e.setError(err)
						return
					}
				}

			case <-ctx.Done():
				e.setError(fmt.Errorf("encoder context cancelled: %w", ctx.Err()))
				return
			}
		}
	})

	return nil
}

func (e *mp3Encoder) encodeBatch() error {
	if len(e.buffer) == 0 {
		return nil
	}

	stereo := make([]int16, len(e.buffer)*2)
	for i, s := range e.buffer {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}

	if err := e.encoder.Write(e.output, stereo); err != nil {
		return fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	e.buffer = e.buffer[:0]

	return nil
}

func (e *mp3Encoder) Wait() error {
	e.wg.Wait()
	return e.err
}

func (e *mp3Encoder) setError(err error) {
	e.errOnce.Do(func() {
		e.err = err
		slog.Debug("mp3 encoder error", "error", err)
	})
}

// MP3Path returns src with its extension replaced by .mp3.
func MP3Path(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".mp3"
}

// ExportMP3 decodes the FLAC recording at src (a path or file:// URI) and
// writes it to dst as MP3. An empty dst writes next to src.
func ExportMP3(ctx context.Context, src, dst string) (string, error) {
	path, err := PathFromURI(src)
	if err != nil {
		return "", err
	}

	if dst == "" {
		dst = MP3Path(path)
	}

	pcm, err := DecodeFLAC(path)
	if err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	input := make(chan []int16)

	enc, err := newMP3Encoder(pcm.SampleRate, input, out)
	if err != nil {
		return "", err
	}

	if err := enc.Start(ctx); err != nil {
		return "", err
	}

	func() {
		defer close(input)

		for chunk := range slices.Chunk(pcm.Samples, mp3BatchSamples) {
			select {
			case input <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := enc.Wait(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}

	if err := out.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync %s: %w", dst, err)
	}

	slog.Info("exported mp3", "src", path, "dst", dst, "duration", pcm.Duration())

	return dst, nil
}
