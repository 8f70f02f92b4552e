package indicator

import (
	"fmt"

	"hueloop/core"
)

// PinOutput drives indicator lines through a core.GPIODriver.
type PinOutput struct {
	gpio core.GPIODriver
	pins [NumLines]core.GPIOPin
}

// NewPinOutput configures the four pins as outputs at their initial levels.
// pins is indexed by Line.
func NewPinOutput(gpio core.GPIODriver, pins [NumLines]core.GPIOPin) (*PinOutput, error) {
	for line, pin := range pins {
		if err := gpio.ConfigureOutput(pin, InitialLevels[line]); err != nil {
			return nil, fmt.Errorf("configure %s line (pin %d): %w", Line(line), pin, err)
		}
	}
	return &PinOutput{gpio: gpio, pins: pins}, nil
}

// Set drives line. A GPIO failure here means the hardware is not in a state
// the firmware can reason about, so it is fatal.
func (p *PinOutput) Set(line Line, high bool) {
	if err := p.gpio.SetPin(p.pins[line], high); err != nil {
		panic("indicator: set " + line.String() + ": " + err.Error())
	}
}
