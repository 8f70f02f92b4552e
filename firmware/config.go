// Package firmware assembles the indicator, timer and USB pieces into the
// two firmware builds a target can select: a blocking build that runs the
// indicator to completion on a busy-wait timer and halts, and a cooperative
// build that runs the indicator alongside a USB serial echo.
package firmware

import (
	"log/slog"

	"hueloop/indicator"
)

// Mode selects the firmware build.
type Mode uint8

const (
	ModeBlocking    Mode = iota // Indicator only, busy-wait delays, halt when done
	ModeCooperative             // Indicator and USB echo on the task dispatcher
)

func (m Mode) String() string {
	switch m {
	case ModeBlocking:
		return "blocking"
	case ModeCooperative:
		return "cooperative"
	default:
		return "unknown"
	}
}

// DefaultCounterBits is the width of the nRF RTC counter.
const DefaultCounterBits = 24

// Config holds the build-independent firmware settings.
type Config struct {
	Mode      Mode
	Indicator indicator.Config
	LogLevel  slog.Level

	// CounterBits is the width of Board.Counter. It only matters when the
	// board supplies a counter.
	CounterBits uint8
}

// DefaultConfig returns the settings used by the shipped targets.
func DefaultConfig(mode Mode) Config {
	cfg := Config{
		Mode:     mode,
		LogLevel: slog.LevelInfo,
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing configuration values
func (c *Config) applyDefaults() {
	if c.Indicator.Cycles <= 0 {
		c.Indicator.Cycles = indicator.DefaultCycles
	}
	if c.Indicator.Blinks <= 0 {
		c.Indicator.Blinks = indicator.DefaultBlinks
	}
	if c.Indicator.Period <= 0 {
		c.Indicator.Period = indicator.DefaultPeriod
	}
	if c.CounterBits == 0 || c.CounterBits > 32 {
		c.CounterBits = DefaultCounterBits
	}
}
