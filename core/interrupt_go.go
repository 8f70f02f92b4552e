//go:build !tinygo

package core

// State stands in for the saved interrupt mask on host builds
type State uintptr

// disableInterrupts does nothing on host builds; tests drive the overflow
// handler from the same goroutine that reads the counter.
func disableInterrupts() State {
	return 0
}

// restoreInterrupts does nothing on host builds
func restoreInterrupts(state State) {}
