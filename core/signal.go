package core

import "sync/atomic"

// Signal is an event flag raised by interrupt handlers or other tasks and
// consumed by the Dispatcher when it resumes the task waiting on it.
// Several raises before a resume collapse into one wake-up, so a woken task
// must re-check the condition it waits for.
type Signal struct {
	pending uint32
}

// Raise marks the signal pending. Safe to call from an interrupt handler.
func (s *Signal) Raise() {
	atomic.StoreUint32(&s.pending, 1)
}

// Pending reports whether the signal has been raised since the last Clear.
func (s *Signal) Pending() bool {
	return atomic.LoadUint32(&s.pending) != 0
}

// Clear consumes the pending flag.
func (s *Signal) Clear() {
	atomic.StoreUint32(&s.pending, 0)
}
