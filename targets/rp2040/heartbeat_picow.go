//go:build rp2040 && picow

package main

import (
	"github.com/soypat/cyw43439"
)

// picowLED is the Pico W on-board LED, which hangs off the CYW43439
// wireless chip's GPIO 0 rather than an RP2040 pin.
type picowLED struct {
	dev *cyw43439.Device
}

// newHeartbeat brings up the wireless chip for its LED. The radio itself
// stays unused.
func newHeartbeat() (heartbeatLine, error) {
	dev := cyw43439.NewPicoWDevice()
	if err := dev.Init(cyw43439.DefaultWifiConfig()); err != nil {
		return nil, err
	}
	return &picowLED{dev: dev}, nil
}

// Set drives the LED with active-low meaning: high is off
func (l *picowLED) Set(high bool) {
	if err := l.dev.GPIOSet(0, !high); err != nil {
		panic("heartbeat: " + err.Error())
	}
}
