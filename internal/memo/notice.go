package memo

import "sync"

// Notice is a single button alert.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier presents notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

var (
	noticePermission     = Notice{Title: "Permission Required", Message: "You need to allow microphone access."}
	noticeStartFailed    = Notice{Title: "Error", Message: "Could not start recording."}
	noticeStopFailed     = Notice{Title: "Error", Message: "Failed to stop recording."}
	noticePlayFailed     = Notice{Title: "Error", Message: "Failed to play recording."}
	noticeAlreadyPlaying = Notice{Title: "Error", Message: "Recording is already playing."}
	noticeCaptureFailed  = Notice{Title: "Error", Message: "Recording stopped unexpectedly."}
)

func noticeSaved(uri string) Notice {
	return Notice{Title: "Recording Saved", Message: "File saved at: " + uri}
}

// maxPendingNotices bounds a queue nobody drains; the oldest are dropped.
const maxPendingNotices = 32

// NoticeQueue buffers notices for surfaces that poll. It keeps the last
// notice after draining.
type NoticeQueue struct {
	mu      sync.Mutex
	pending []Notice
	last    *Notice
}

func (q *NoticeQueue) Notify(n Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == maxPendingNotices {
		q.pending = append(q.pending[:0], q.pending[1:]...)
	}

	q.pending = append(q.pending, n)
	q.last = &n
}

// Drain returns and clears the pending notices, oldest first.
func (q *NoticeQueue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.pending
	q.pending = nil

	return out
}

// Last returns the most recent notice ever raised.
func (q *NoticeQueue) Last() (Notice, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.last == nil {
		return Notice{}, false
	}

	return *q.last, true
}

// LastNotice remembers only the most recent notice, for surfaces that show
// the latest state rather than a history.
type LastNotice struct {
	mu   sync.Mutex
	last *Notice
}

func (l *LastNotice) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last = &n
}

func (l *LastNotice) Last() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last == nil {
		return Notice{}, false
	}

	return *l.last, true
}
