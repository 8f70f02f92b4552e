package core

import "time"

// MonotonicClock reads the runtime's monotonic clock in microseconds since
// the clock was created.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts a clock at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now returns microseconds since the clock was created
func (c *MonotonicClock) Now() uint64 {
	return uint64(time.Since(c.start) / time.Microsecond)
}

// SpinIdler returns immediately; the dispatcher busy-polls.
type SpinIdler struct{}

// Idle does nothing
func (SpinIdler) Idle(uint64, bool) {}

// SleepIdler sleeps until the next timer deadline, or for at most Max
// when no timer is pending. Interrupts still wake the dispatcher only at
// the end of the sleep, so Max bounds the latency of signal-driven tasks.
type SleepIdler struct {
	Clock Clock
	Max   uint64 // Microseconds
}

// Idle sleeps until deadline or for Max, whichever comes first
func (s *SleepIdler) Idle(deadline uint64, ok bool) {
	wait := s.Max
	if ok {
		now := s.Clock.Now()
		if deadline <= now {
			return
		}
		if d := deadline - now; d < wait {
			wait = d
		}
	}
	if wait > 0 {
		time.Sleep(time.Duration(wait) * time.Microsecond)
	}
}

// FakeClock is a manually advanced Clock. As an Idler it jumps straight to
// the next timer deadline, which lets timer-driven task sets run instantly.
type FakeClock struct {
	now   uint64
	Idles int // Number of Idle calls
}

// Now returns the current fake time
func (c *FakeClock) Now() uint64 {
	return c.now
}

// Advance moves the clock forward by us microseconds
func (c *FakeClock) Advance(us uint64) {
	c.now += us
}

// Idle jumps to deadline when one is pending
func (c *FakeClock) Idle(deadline uint64, ok bool) {
	c.Idles++
	if ok && deadline > c.now {
		c.now = deadline
	}
}
