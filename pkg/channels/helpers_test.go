package channels_test

import "time"

// receiveAll drains ch until it is closed or nothing arrives within idle.
func receiveAll[T any](ch <-chan T, idle time.Duration) []T {
	var out []T

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, msg)
		case <-time.After(idle):
			return out
		}
	}
}
