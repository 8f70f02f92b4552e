package core

import "sync/atomic"

// Quiescer puts hardware into a safe state before the processor halts.
// On the nRF52840 this clears the USBD D+ pull-up so the host stops talking
// to a device that is about to stop responding.
type Quiescer interface {
	Quiesce()
}

// haltFence is stored with sequential consistency so that every pending
// memory operation completes before the trap loop starts.
var haltFence uint32

// Halt quiesces q, then calls trap forever. trap is normally a breakpoint
// instruction; Halt never returns unless trap panics.
func Halt(q Quiescer, trap func()) {
	if q != nil {
		q.Quiesce()
	}
	Logger(ComponentFirmware).Info("done")

	atomic.StoreUint32(&haltFence, 1)
	for {
		trap()
	}
}
