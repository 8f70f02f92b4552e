package core

import "sync/atomic"

// Timer frequencies and unit conversions
const (
	TickFreq        = 1000000 // Delay timer: one tick per microsecond
	MicrosPerSecond = 1000000
	NanosPerMicro   = 1000
)

// overflowCount counts hardware counter wraparounds since boot.
// The timer interrupt handler is the only writer.
var overflowCount uint32

// OverflowEvent is the timer peripheral whose overflow raised the interrupt.
type OverflowEvent interface {
	// ClearOverflow clears the pending overflow event on the peripheral
	ClearOverflow()
}

// RecordOverflow advances the overflow counter by one.
// Must only be called from the overflow interrupt handler. The load and
// store are not a single atomic operation, which is fine while there is
// exactly one writer that runs to completion.
func RecordOverflow() {
	curr := atomic.LoadUint32(&overflowCount)
	atomic.StoreUint32(&overflowCount, curr+1)
}

// HandleOverflow is the body of the overflow interrupt handler.
// It never blocks and never fails.
func HandleOverflow(ev OverflowEvent) {
	RecordOverflow()
	ev.ClearOverflow()
}

// Overflows returns the number of overflow events since boot
func Overflows() uint32 {
	return atomic.LoadUint32(&overflowCount)
}

// SetOverflows sets the overflow counter (for testing/hardware integration).
// Interrupts are masked so the store cannot interleave with the handler.
func SetOverflows(n uint32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	atomic.StoreUint32(&overflowCount, n)
}

// Counter is a free-running hardware counter that wraps at 2^Bits.
type Counter interface {
	// Count returns the current counter value
	Count() uint32
}

// PendingCounter is a Counter that can also report an overflow the
// interrupt handler has not yet counted, e.g. while interrupts are masked.
type PendingCounter interface {
	Counter
	OverflowPending() bool
}

// ExtendedCounter widens a hardware counter to 64 bits using the overflow
// count maintained by the interrupt handler.
type ExtendedCounter struct {
	HW   Counter
	Bits uint8 // Counter width, e.g. 24 for the nRF RTC
}

// Ticks returns the extended tick count since boot. If HW is a
// PendingCounter, a wrap whose interrupt has not run yet is counted too;
// otherwise such a read lags by one overflow period.
func (c *ExtendedCounter) Ticks() uint64 {
	mask := uint32(1)<<c.Bits - 1
	if c.Bits >= 32 {
		mask = ^uint32(0)
	}
	pc, _ := c.HW.(PendingCounter)
	for {
		// Must read overflow first, then counter, then overflow again to
		// detect an overflow handled between the two reads
		high1 := Overflows()
		low := c.HW.Count() & mask
		pending := pc != nil && pc.OverflowPending()
		high2 := Overflows()

		if high1 != high2 {
			continue
		}
		// A low count with the event raised means the wrap preceded the
		// read. A high count means it came after.
		if pending && low <= mask>>1 {
			high1++
		}
		return uint64(high1)<<c.Bits | uint64(low)
	}
}
