package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// CatchStopSignals returns a channel that closes on the first of:
//   - OS signals: SIGINT, SIGTERM
//   - ctx being done
//   - a newline or space read from stdin (nil stdin is ignored)
func CatchStopSignals(ctx context.Context, stdin io.Reader) <-chan struct{} {
	stopC := make(chan struct{})
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)

	stdinC := make(chan struct{})

	// Reads from stdin cannot be cancelled, so this goroutine lives until
	// input arrives or the process exits.
	if stdin != nil {
		go func() {
			buf := make([]byte, 1)
			for {
				n, err := stdin.Read(buf)
				if err != nil || n == 0 {
					return
				}

				if buf[0] == '\n' || buf[0] == ' ' {
					close(stdinC)
					return
				}
			}
		}()
	}

	go func() {
		defer close(stopC)
		defer signal.Stop(sigC)

		select {
		case <-ctx.Done():
		case <-sigC:
		case <-stdinC:
		}
	}()

	return stopC
}
