package channels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// subscriber holds a channel and its send timeout configuration.
type subscriber[T any] struct {
	ch       chan<- T
	timeout  time.Duration // zero means non-blocking
	inactive atomic.Bool
	dropped  atomic.Int32
}

func (s *subscriber[T]) send(msg T) {
	if s.inactive.Load() {
		s.dropped.Add(1)
		return
	}

	var err error
	if s.timeout > 0 {
		err = SendWithTimeout(s.ch, msg, s.timeout)
	} else {
		err = SendNonBlock(s.ch, msg)
	}

	if err != nil {
		// closed channels go inactive, everything else just counts as a drop
		s.dropped.Add(1)
		if errors.Is(err, ErrChannelClosed) {
			s.inactive.Store(true)
		}
	}
}

// Broadcaster copies every message written to its input channel to all
// subscriber channels. It owns the input channel and closes it when the
// context passed to Run is cancelled, after which buffered messages are
// drained to subscribers.
//
// Subscribers are either non-blocking (messages dropped when full) or
// bounded by a send timeout (messages dropped when the timeout expires).
// Subscriber channels are never closed by the Broadcaster; callers close
// them after Wait returns.
type Broadcaster[T any] struct {
	subscribers []*subscriber[T]
	bufSize     int
	input       chan T
	started     atomic.Bool
	wg          sync.WaitGroup
}

// NewBroadcaster creates a Broadcaster for messages of type T.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// WithBuffer sets the input channel capacity. Defaults to twice the
// number of subscribers. Must be called before Run.
func (f *Broadcaster[T]) WithBuffer(n int) *Broadcaster[T] {
	f.bufSize = n
	return f
}

// Subscribe adds a non-blocking subscriber. Must be called before Run.
func (f *Broadcaster[T]) Subscribe(ch chan<- T) error {
	if ch == nil {
		return errors.New("subscriber channel cannot be nil")
	}

	f.subscribers = append(f.subscribers, &subscriber[T]{ch: ch})

	return nil
}

// SubscribeWithTimeout adds a subscriber that waits up to timeout for each
// send. Must be called before Run.
func (f *Broadcaster[T]) SubscribeWithTimeout(ch chan<- T, timeout time.Duration) error {
	if ch == nil {
		return errors.New("subscriber channel cannot be nil")
	}

	if timeout <= 0 {
		return errors.New("subscriber timeout must be positive")
	}

	f.subscribers = append(f.subscribers, &subscriber[T]{ch: ch, timeout: timeout})

	return nil
}

// Run starts broadcasting and returns the input channel.
//
// The returned channel is closed on context cancellation; writers must stop
// sending before they cancel. Returns error if already started or if there
// are no subscribers.
func (f *Broadcaster[T]) Run(ctx context.Context) (chan<- T, error) {
	if len(f.subscribers) == 0 {
		return nil, fmt.Errorf("no subscribers available")
	}

	if !f.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("broadcaster already started")
	}

	size := f.bufSize
	if size <= 0 {
		size = len(f.subscribers) * 2
	}

	f.input = make(chan T, size)

	f.wg.Go(func() {
		for msg := range f.input {
			for _, sub := range f.subscribers {
				sub.send(msg)
			}
		}
	})

	go func() {
		<-ctx.Done()
		close(f.input)
	}()

	return f.input, nil
}

// Wait blocks until the input channel is closed and fully drained.
// Safe to call from multiple goroutines.
func (f *Broadcaster[T]) Wait() {
	f.wg.Wait()
}

// SubscriberStats reports per-subscriber delivery health.
type SubscriberStats struct {
	Dropped  int
	Inactive bool
}

// Stats returns delivery stats in subscription order.
func (f *Broadcaster[T]) Stats() []SubscriberStats {
	stats := make([]SubscriberStats, 0, len(f.subscribers))
	for _, sub := range f.subscribers {
		stats = append(stats, SubscriberStats{
			Dropped:  int(sub.dropped.Load()),
			Inactive: sub.inactive.Load(),
		})
	}

	return stats
}
