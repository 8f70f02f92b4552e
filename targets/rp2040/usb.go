//go:build rp2040

package main

import (
	"machine"
	tinyusb "machine/usb"
	"machine/usb/descriptor"

	"hueloop/usb"
)

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

// initUSB configures machine.Serial, which is USB CDC on the RP2040, and
// wraps it as the echo session's class. TinyGo's runtime services the
// controller from its own interrupt.
func initUSB() (*usb.SerialClass, error) {
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return nil, err
	}
	return usb.NewSerialClass(machine.Serial), nil
}
