package core

import (
	"log/slog"
	"math"
	"time"
)

// MaxDelaySeconds is the largest whole number of seconds whose microsecond
// count fits the 32-bit argument of a single hardware delay.
const MaxDelaySeconds = math.MaxUint32 / MicrosPerSecond

// Delayer busy-waits on a hardware timer.
type Delayer interface {
	// Delay blocks for us timer ticks; 1 tick = 1 microsecond
	Delay(us uint32)
}

// BlockingTimer waits for arbitrary durations on a 32-bit Delayer without
// giving up the core. It must not be used while a Dispatcher is running.
type BlockingTimer struct {
	hw   Delayer
	base *ExtendedCounter
	log  *slog.Logger
}

// NewBlockingTimer wraps hw. base may be nil; when set, waits report the
// elapsed extended ticks at trace level.
func NewBlockingTimer(hw Delayer, base *ExtendedCounter) *BlockingTimer {
	return &BlockingTimer{
		hw:   hw,
		base: base,
		log:  Logger(ComponentTimer),
	}
}

// Wait blocks for d. The sub-second part is issued as one delay and the
// whole seconds in chunks of at most MaxDelaySeconds, so no delay argument
// overflows. Sub-microsecond remainders are dropped.
func (t *BlockingTimer) Wait(d time.Duration) {
	if d <= 0 {
		return
	}
	Trace(t.log, "blocking", slog.Duration("duration", d))

	var start uint64
	if t.base != nil {
		start = t.base.Ticks()
	}

	subsecMicros := uint32((d % time.Second) / time.Microsecond)
	if subsecMicros != 0 {
		t.hw.Delay(subsecMicros)
	}

	secs := uint64(d / time.Second)
	for secs != 0 {
		var us uint32
		if secs > MaxDelaySeconds {
			secs -= MaxDelaySeconds
			us = MaxDelaySeconds * MicrosPerSecond
		} else {
			us = uint32(secs) * MicrosPerSecond
			secs = 0
		}
		t.hw.Delay(us)
	}

	if t.base != nil {
		Trace(t.log, "... DONE", slog.Uint64("ticks", t.base.Ticks()-start))
		return
	}
	Trace(t.log, "... DONE")
}
