//go:build rp2040

package main

import (
	"image/color"

	"tinygo.org/x/drivers/ws2812"

	"hueloop/indicator"
)

// pixelLevel is the channel intensity of a lit color line
const pixelLevel = 0x20

// heartbeatLine is the LED the indicator blinks within every color phase
type heartbeatLine interface {
	Set(high bool)
}

// pixelOutput shows the three color lines on a single WS2812 pixel and
// passes the heartbeat line through. Levels keep the active-low meaning of
// discrete LEDs: a low line is a lit channel.
type pixelOutput struct {
	heartbeat heartbeatLine
	pixel     ws2812.Device
	levels    [indicator.NumLines]bool
	frame     [1]color.RGBA
}

func newPixelOutput(heartbeat heartbeatLine, pixel ws2812.Device) *pixelOutput {
	return &pixelOutput{heartbeat: heartbeat, pixel: pixel}
}

// Set implements indicator.Output
func (o *pixelOutput) Set(line indicator.Line, high bool) {
	o.levels[line] = high
	if line == indicator.Heartbeat {
		o.heartbeat.Set(high)
		return
	}
	o.show()
}

func (o *pixelOutput) show() {
	var c color.RGBA
	if !o.levels[indicator.LineRed] {
		c.R = pixelLevel
	}
	if !o.levels[indicator.LineGreen] {
		c.G = pixelLevel
	}
	if !o.levels[indicator.LineBlue] {
		c.B = pixelLevel
	}
	o.frame[0] = c
	if err := o.pixel.WriteColors(o.frame[:]); err != nil {
		panic("pixel: " + err.Error())
	}
}
