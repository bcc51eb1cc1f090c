package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// pcmWriter drains S16LE packets from a channel into a FLACWriter until
// the channel is closed. The first write error is kept and also published
// on failed so a live session can react before it is stopped.
type pcmWriter struct {
	input  <-chan DataPacket
	output *FLACWriter

	bytesWritten atomic.Int64
	failed       chan error

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

func newPCMWriter(input <-chan DataPacket, output *FLACWriter) (*pcmWriter, error) {
	if input == nil {
		return nil, errors.New("input channel cannot be nil")
	}

	if output == nil {
		return nil, errors.New("output cannot be nil")
	}

	return &pcmWriter{
		input:  input,
		output: output,
		failed: make(chan error, 1),
	}, nil
}

// Start begins draining the input channel.
func (w *pcmWriter) Start(ctx context.Context) {
	w.wg.Go(func() {
		for {
			select {
			case data, ok := <-w.input:
				if !ok {
					return
				}

				if w.err != nil {
					// keep draining so the producer never blocks
					continue
				}

				if err := w.output.Write(BytesToInt16(data)); err != nil {
					w.setError(fmt.Errorf("failed to write PCM data: %w", err))
					continue
				}

				w.bytesWritten.Add(int64(len(data)))

			case <-ctx.Done():
				w.setError(fmt.Errorf("writer context cancelled: %w", ctx.Err()))
				return
			}
		}
	})
}

// Wait blocks until the input channel is closed and drained and returns
// the first error that occurred.
func (w *pcmWriter) Wait() error {
	w.wg.Wait()
	return w.err
}

// Failed delivers the first write error, at most once.
func (w *pcmWriter) Failed() <-chan error {
	return w.failed
}

// BytesWritten returns the number of PCM bytes encoded so far.
func (w *pcmWriter) BytesWritten() int64 {
	return w.bytesWritten.Load()
}

// setError records the first error that occurs (subsequent calls are no-ops).
func (w *pcmWriter) setError(err error) {
	w.errOnce.Do(func() {
		w.err = err
		w.failed <- err
		slog.Error("recording writer error", "error", err)
	})
}
