// Package indicator drives the status LEDs through a fixed color cycle,
// blinking a heartbeat LED a few times per color.
package indicator

// Color is the combination of RGB LED lines currently lit.
type Color uint8

// The color cycle, in order. Each step lights or unlights exactly one line.
const (
	Red Color = iota
	RedGreen
	Green
	GreenBlue
	Blue
	BlueRed
)

// NumColors is the length of the color cycle
const NumColors = 6

// String returns the color name
func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case RedGreen:
		return "RedGreen"
	case Green:
		return "Green"
	case GreenBlue:
		return "GreenBlue"
	case Blue:
		return "Blue"
	case BlueRed:
		return "BlueRed"
	default:
		return "Unknown"
	}
}

// Line is one indicator output.
type Line uint8

const (
	Heartbeat Line = iota // Primary LED, blinked within every color phase
	LineRed
	LineGreen
	LineBlue
	NumLines
)

// String returns the line name
func (l Line) String() string {
	switch l {
	case Heartbeat:
		return "heartbeat"
	case LineRed:
		return "red"
	case LineGreen:
		return "green"
	case LineBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// Effect is the single line change that realizes a color transition.
// Lines are active-low: High turns the LED off.
type Effect struct {
	Line Line
	High bool
}

// transitions is indexed by the current color
var transitions = [NumColors]struct {
	next   Color
	effect Effect
}{
	Red:       {RedGreen, Effect{LineGreen, false}},
	RedGreen:  {Green, Effect{LineRed, true}},
	Green:     {GreenBlue, Effect{LineBlue, false}},
	GreenBlue: {Blue, Effect{LineGreen, true}},
	Blue:      {BlueRed, Effect{LineRed, false}},
	BlueRed:   {Red, Effect{LineBlue, true}},
}

// Transition returns the color after c and the line change that gets there.
func Transition(c Color) (Color, Effect) {
	t := transitions[c%NumColors]
	return t.next, t.effect
}

// Wraps reports whether leaving c completes a full traversal of the cycle.
func Wraps(c Color) bool {
	return c == BlueRed
}

// InitialLevels are the line levels driven at start-up: heartbeat off and
// only the red LED lit, i.e. showing Red.
var InitialLevels = [NumLines]bool{
	Heartbeat: true,
	LineRed:   false,
	LineGreen: true,
	LineBlue:  true,
}
