//go:build nrf52840

package main

import (
	"device/arm"
	"device/nrf"
)

// usbdPullup disconnects the device from the USB host by releasing D+, so
// the host stops talking to a halted device instead of power-cycling the
// port.
type usbdPullup struct{}

func (usbdPullup) Quiesce() {
	nrf.USBD.USBPULLUP.Set(0)
}

// breakpoint stops the core under a debugger
func breakpoint() {
	arm.Asm("bkpt")
}
