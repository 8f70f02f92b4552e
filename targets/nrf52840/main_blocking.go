//go:build nrf52840 && !usb

package main

import (
	"hueloop/core"
	"hueloop/firmware"
)

// run is the blocking build: the indicator runs to completion on TIMER0
// busy-waits with RTC0 counting in the background, then the core halts.
func run(b *firmware.Board) {
	startRTC0()

	b.Delayer = newTimer0Delay()
	b.Counter = rtcCounter{}
	b.Quiescer = usbdPullup{}
	b.Trap = breakpoint

	cfg := firmware.DefaultConfig(firmware.ModeBlocking)
	cfg.CounterBits = rtcBits
	if err := firmware.RunBlocking(b, cfg); err != nil {
		core.Logger(core.ComponentFirmware).Error("blocking run", "err", err)
		panic(err)
	}
}
