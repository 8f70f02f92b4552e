//go:build nrf52840

package main

import "device/nrf"

// timer0Delay busy-waits on TIMER0 running at 1 MHz, one tick per
// microsecond, with a 32-bit compare.
type timer0Delay struct{}

func newTimer0Delay() timer0Delay {
	t := nrf.TIMER0
	t.TASKS_STOP.Set(1)
	t.MODE.Set(nrf.TIMER_MODE_MODE_Timer)
	t.BITMODE.Set(nrf.TIMER_BITMODE_BITMODE_32Bit)
	t.PRESCALER.Set(4) // 16 MHz / 2^4
	t.SHORTS.Set(nrf.TIMER_SHORTS_COMPARE0_STOP)
	return timer0Delay{}
}

// Delay implements core.Delayer
func (timer0Delay) Delay(us uint32) {
	if us == 0 {
		return
	}
	t := nrf.TIMER0
	t.CC[0].Set(us)
	t.EVENTS_COMPARE[0].Set(0)
	t.TASKS_CLEAR.Set(1)
	t.TASKS_START.Set(1)
	for t.EVENTS_COMPARE[0].Get() == 0 {
	}
	t.EVENTS_COMPARE[0].Set(0)
}
