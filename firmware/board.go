package firmware

import (
	"errors"
	"fmt"

	"hueloop/core"
	"hueloop/indicator"
	"hueloop/usb"
)

// ErrWrongMode is returned when a runner is given a Config for the other
// build.
var ErrWrongMode = errors.New("firmware: wrong mode for runner")

// Board is what a target supplies. Which fields are required depends on
// the mode.
type Board struct {
	Output indicator.Output // Required

	// Blocking build
	Delayer  core.Delayer
	Counter  core.Counter  // Optional; extended for trace timing
	Quiescer core.Quiescer // Optional
	Trap     func()

	// Cooperative build
	Clock     core.Clock
	Idler     core.Idler
	Transport usb.Transport
	Class     usb.Class
}

// validate reports the first collaborator mode needs that b lacks.
func (b *Board) validate(mode Mode) error {
	missing := func(what string) error {
		return fmt.Errorf("firmware: %s build needs a %s", mode, what)
	}
	if b.Output == nil {
		return missing("indicator output")
	}
	switch mode {
	case ModeBlocking:
		if b.Delayer == nil {
			return missing("delayer")
		}
		if b.Trap == nil {
			return missing("trap")
		}
	case ModeCooperative:
		if b.Clock == nil {
			return missing("clock")
		}
		if b.Idler == nil {
			return missing("idler")
		}
		if b.Transport == nil {
			return missing("USB transport")
		}
		if b.Class == nil {
			return missing("USB class")
		}
	default:
		return fmt.Errorf("firmware: unknown mode %d", mode)
	}
	return nil
}
