package indicator

import (
	"log/slog"
	"time"

	"hueloop/core"
)

// Defaults for the indicator cycle
const (
	DefaultCycles = 5                      // Full color cycles before stopping
	DefaultBlinks = 4                      // Heartbeat blinks per color
	DefaultPeriod = 100 * time.Millisecond // Hold time of each heartbeat level
)

// Config tunes the indicator cycle. Zero fields take the defaults.
type Config struct {
	Cycles int
	Blinks int
	Period time.Duration
}

// applyDefaults fills in missing configuration values
func (c *Config) applyDefaults() {
	if c.Cycles <= 0 {
		c.Cycles = DefaultCycles
	}
	if c.Blinks <= 0 {
		c.Blinks = DefaultBlinks
	}
	if c.Period <= 0 {
		c.Period = DefaultPeriod
	}
}

// Output drives the indicator lines. The machine is its only user.
type Output interface {
	Set(line Line, high bool)
}

// Waiter blocks the caller for a duration; core.BlockingTimer is one.
type Waiter interface {
	Wait(d time.Duration)
}

// Machine is the indicator state machine. It has no notion of time: Step
// performs one output change and reports how long to hold it, leaving the
// waiting to whichever driver hosts it.
type Machine struct {
	out    Output
	cfg    Config
	color  Color
	cycles int
	edges  int // Heartbeat edges issued in the current color phase
	done   bool
	log    *slog.Logger
}

// New creates a machine showing Red and drives the initial line levels.
func New(out Output, cfg Config) *Machine {
	cfg.applyDefaults()
	m := &Machine{
		out:    out,
		cfg:    cfg,
		color:  Red,
		cycles: cfg.Cycles,
		log:    core.Logger(core.ComponentIndicator),
	}
	for line, level := range InitialLevels {
		out.Set(Line(line), level)
	}
	return m
}

// Color returns the color currently shown
func (m *Machine) Color() Color {
	return m.color
}

// Cycles returns the remaining cycle budget
func (m *Machine) Cycles() int {
	return m.cycles
}

// Done reports whether the cycle budget is spent
func (m *Machine) Done() bool {
	return m.done
}

// Step drives the next heartbeat edge (low, high, low, high, ...) and
// returns how long to hold it. After the last blink of a phase it first
// advances the color; when that exhausts the budget it returns done and
// drives nothing further.
func (m *Machine) Step() (hold time.Duration, done bool) {
	if m.done {
		return 0, true
	}

	if m.edges == 2*m.cfg.Blinks {
		m.edges = 0
		if m.advance() {
			m.done = true
			m.log.Info("indicator finished")
			return 0, true
		}
	}

	m.out.Set(Heartbeat, m.edges%2 == 1)
	m.edges++
	return m.cfg.Period, false
}

// advance applies one color transition and reports budget exhaustion.
func (m *Machine) advance() bool {
	next, eff := Transition(m.color)
	m.out.Set(eff.Line, eff.High)

	if Wraps(m.color) {
		m.cycles--
		m.log.Debug("cycle complete", "remaining", m.cycles)
		if m.cycles == 0 {
			return true
		}
	}

	m.log.Debug("color", "from", m.color.String(), "to", next.String())
	m.color = next
	return false
}

// Run steps the machine to completion, blocking on w between edges.
func (m *Machine) Run(w Waiter) {
	for {
		hold, done := m.Step()
		if done {
			return
		}
		w.Wait(hold)
	}
}
