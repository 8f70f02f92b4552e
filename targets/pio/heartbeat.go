//go:build rp2040

package pio

// PIO heartbeat line using tinygo-org/pio package
// The CPU only hands the state machine a level; the pin toggles in the
// PIO clock domain without a GPIO register write from the task.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildHeartbeatProgram creates the output PIO program using AssemblerV0.
// Each FIFO word sets the pin to its lowest bit.
func buildHeartbeatProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),          // 0: pull block
		asm.Out(rp2pio.OutDestPins, 1).Encode(), // 1: out pins, 1
		// .wrap
	}
}

// HeartbeatLine drives one LED pin from a PIO state machine
type HeartbeatLine struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
}

// NewHeartbeatLine creates a heartbeat line
// pioNum: 0 for PIO0, 1 for PIO1
// smNum: 0-3 for state machine number
func NewHeartbeatLine(pioNum, smNum uint8) *HeartbeatLine {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	return &HeartbeatLine{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Init loads the program and starts the state machine with pin at level high
func (h *HeartbeatLine) Init(pin machine.Pin, high bool) error {
	h.pin = pin

	// Claim the state machine before touching it
	h.sm.TryClaim()

	program := buildHeartbeatProgram()
	offset, err := h.pio.AddProgram(program, -1)
	if err != nil {
		return err
	}
	h.offset = offset

	h.pin.Configure(machine.PinConfig{Mode: h.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(h.pin, 1)
	// Shift right so bit 0 goes out first, explicit PULL
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1000, 0)

	// Pin directions must be set after Init
	h.sm.Init(offset, cfg)
	h.sm.SetPindirsConsecutive(h.pin, 1, true)
	h.sm.SetPinsConsecutive(h.pin, 1, high)

	h.sm.SetEnabled(true)
	return nil
}

// Set queues a new pin level
func (h *HeartbeatLine) Set(high bool) {
	var level uint32
	if high {
		level = 1
	}
	// The program drains the FIFO within a few PIO cycles
	for h.sm.IsTxFIFOFull() {
	}
	h.sm.TxPut(level)
}
