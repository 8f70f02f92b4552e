//go:build nrf52840 && usb

// The board's default machine.Serial is the UART, whose DTR is always low.
// Build with -serial=usb so machine.Serial is the USB CDC port and the log
// stays on machine.DefaultUART:
//
//	tinygo flash -target=pca10056 -tags=usb -serial=usb ./targets/nrf52840

package main

import (
	"machine"
	tinyusb "machine/usb"
	"machine/usb/descriptor"

	"hueloop/core"
	"hueloop/firmware"
	"hueloop/usb"
)

// idleMax bounds how long the dispatcher sleeps with only signal waits
// pending
const idleMax = usb.PollInterval

func init() {
	id := usb.DefaultDeviceConfig()
	tinyusb.VendorID = id.VendorID
	tinyusb.ProductID = id.ProductID
	tinyusb.Manufacturer = id.Manufacturer
	tinyusb.Product = id.Product
	tinyusb.Serial = id.SerialNumber

	// The runtime serves descriptor.CDC; take over its class, EP0 size and
	// power fields.
	if err := id.Apply(descriptor.CDC.Device, descriptor.CDC.Configuration); err != nil {
		panic(err)
	}
}

// run is the cooperative build: USB serial echo and the indicator share the
// core through the task dispatcher.
func run(b *firmware.Board) {
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		panic(err)
	}
	class := usb.NewSerialClass(machine.Serial)
	clock := core.NewMonotonicClock()

	b.Clock = clock
	b.Idler = &core.SleepIdler{Clock: clock, Max: idleMax}
	b.Class = class
	b.Transport = class.Transport()

	ts, err := firmware.NewTaskSet(b, firmware.DefaultConfig(firmware.ModeCooperative))
	if err != nil {
		core.Logger(core.ComponentFirmware).Error("task set", "err", err)
		panic(err)
	}
	ts.Run()
}
