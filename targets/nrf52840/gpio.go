//go:build nrf52840

package main

import (
	"errors"
	"fmt"
	"machine"

	"hueloop/core"
)

// numGPIO covers P0.00-P0.31 and P1.00-P1.15
const numGPIO = 48

var errPinNotConfigured = errors.New("pin not configured as output")

// NRFGPIODriver implements core.GPIODriver on the nRF52840 GPIO ports.
// Pin numbers are 32*port + pin.
type NRFGPIODriver struct {
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewNRFGPIODriver creates a driver with no pins configured
func NewNRFGPIODriver() *NRFGPIODriver {
	return &NRFGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a push-pull output at the given level
func (d *NRFGPIODriver) ConfigureOutput(pin core.GPIOPin, high bool) error {
	if pin >= numGPIO {
		return fmt.Errorf("gpio %d: no such pin", pin)
	}
	machinePin := machine.Pin(pin)
	// Latch the level before enabling the driver so the LED never glitches
	machinePin.Set(high)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	machinePin.Set(high)

	d.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *NRFGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return fmt.Errorf("gpio %d: %w", pin, errPinNotConfigured)
	}
	machinePin.Set(value)
	return nil
}
