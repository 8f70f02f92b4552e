//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"hueloop/core"
	"hueloop/firmware"
	"hueloop/usb"
)

// pixelPin carries the WS2812 data line
const pixelPin = machine.GPIO16

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	initLog()
	log := core.Logger(core.ComponentFirmware)
	log.Info("initializing")

	class, err := initUSB()
	if err != nil {
		log.Error("usb", "err", err)
		panic(err)
	}

	heartbeat, err := newHeartbeat()
	if err != nil {
		log.Error("heartbeat", "err", err)
		panic(err)
	}
	pixelPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	out := newPixelOutput(heartbeat, ws2812.NewWS2812(pixelPin))

	clock := hwClock{}
	b := &firmware.Board{
		Output:    out,
		Clock:     clock,
		Idler:     &core.SleepIdler{Clock: clock, Max: usb.PollInterval},
		Class:     class,
		Transport: class.Transport(),
	}
	ts, err := firmware.NewTaskSet(b, firmware.DefaultConfig(firmware.ModeCooperative))
	if err != nil {
		log.Error("task set", "err", err)
		panic(err)
	}
	ts.Run()
}

// initLog sends log output to UART0 (GP0/GP1); USB carries the echo
func initLog() {
	uart := machine.UART0
	if err := uart.Configure(machine.UARTConfig{BaudRate: 115200}); err != nil {
		return
	}
	core.SetDebugWriter(func(s string) {
		uart.Write([]byte(s))
	})
}
