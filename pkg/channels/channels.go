// Package channels provides generic helpers for fanning PCM packets (or any
// other message) out over Go channels without blocking the producer.
package channels

import (
	"errors"
)

var (
	ErrChannelClosed  = errors.New("channel closed")
	ErrChannelTimeout = errors.New("send timeout")
	ErrChannelFull    = errors.New("channel full")
)
