//go:build nrf52840

package main

import (
	"device/nrf"
	"runtime/interrupt"

	"hueloop/core"
)

// rtcBits is the width of the RTC COUNTER register
const rtcBits = 24

// startHFCLK starts the high-frequency crystal and busy-waits until it runs.
func startHFCLK() {
	nrf.CLOCK.EVENTS_HFCLKSTARTED.Set(0)
	nrf.CLOCK.TASKS_HFCLKSTART.Set(1)
	for nrf.CLOCK.EVENTS_HFCLKSTARTED.Get() == 0 {
	}
}

// rtcOverflow is the RTC0 OVERFLOW event
type rtcOverflow struct{}

func (rtcOverflow) ClearOverflow() {
	nrf.RTC0.EVENTS_OVRFLW.Set(0)
}

// rtcCounter reads the RTC0 counter
type rtcCounter struct{}

func (rtcCounter) Count() uint32 {
	return nrf.RTC0.COUNTER.Get()
}

// OverflowPending reports an OVERFLOW event the handler has not cleared
func (rtcCounter) OverflowPending() bool {
	return nrf.RTC0.EVENTS_OVRFLW.Get() != 0
}

// startRTC0 runs RTC0 undivided from the low-frequency clock, which the
// runtime has already started, and counts its overflows. An overflow
// happens every 2^24 ticks (512 s). The handler runs at the highest
// priority.
func startRTC0() {
	rtc := nrf.RTC0
	rtc.TASKS_STOP.Set(1)
	rtc.PRESCALER.Set(0)
	rtc.EVENTS_OVRFLW.Set(0)
	rtc.EVTENSET.Set(nrf.RTC_EVTENSET_OVRFLW)
	rtc.INTENSET.Set(nrf.RTC_INTENSET_OVRFLW)

	intr := interrupt.New(nrf.IRQ_RTC0, func(interrupt.Interrupt) {
		core.HandleOverflow(rtcOverflow{})
	})
	intr.SetPriority(0)
	intr.Enable()

	core.SetOverflows(0)
	rtc.TASKS_CLEAR.Set(1)
	rtc.TASKS_START.Set(1)
}
