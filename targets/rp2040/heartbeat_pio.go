//go:build rp2040 && !picow

package main

import (
	"machine"

	"hueloop/indicator"
	"hueloop/targets/pio"
)

// newHeartbeat drives the on-board LED (GPIO25) from PIO0 state machine 0
func newHeartbeat() (heartbeatLine, error) {
	line := pio.NewHeartbeatLine(0, 0)
	if err := line.Init(machine.LED, indicator.InitialLevels[indicator.Heartbeat]); err != nil {
		return nil, err
	}
	return line, nil
}
