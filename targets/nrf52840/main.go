//go:build nrf52840

package main

import (
	"machine"

	"hueloop/core"
	"hueloop/firmware"
	"hueloop/indicator"
)

// nRF52840-DK LEDs: LED1 is the heartbeat, LED2 is the RGB LED. All are
// active-low.
var indicatorPins = [indicator.NumLines]core.GPIOPin{
	indicator.Heartbeat: 6,      // P0.06
	indicator.LineRed:   8,      // P0.08
	indicator.LineGreen: 32 + 9, // P1.09
	indicator.LineBlue:  12,     // P0.12
}

func main() {
	initLog()
	log := core.Logger(core.ComponentFirmware)
	log.Info("initializing")

	// TIMER0 and USBD both need the crystal running
	startHFCLK()

	gpio := NewNRFGPIODriver()
	core.SetGPIODriver(gpio)
	out, err := indicator.NewPinOutput(core.MustGPIO(), indicatorPins)
	if err != nil {
		panic(err)
	}

	run(&firmware.Board{Output: out})
}

// initLog sends log output to the board's UART
func initLog() {
	uart := machine.DefaultUART
	if err := uart.Configure(machine.UARTConfig{BaudRate: 115200}); err != nil {
		return
	}
	core.SetDebugWriter(func(s string) {
		uart.Write([]byte(s))
	})
}
