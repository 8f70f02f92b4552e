package indicator

import (
	"time"

	"hueloop/core"
)

// Task hosts a Machine on the cooperative dispatcher: each heartbeat hold
// becomes a timer suspension instead of a busy-wait.
type Task struct {
	m *Machine
}

// NewTask wraps m
func NewTask(m *Machine) *Task {
	return &Task{m: m}
}

// Poll implements core.Task
func (t *Task) Poll(now uint64) core.Wake {
	hold, done := t.m.Step()
	if done {
		return core.Done()
	}
	return core.Until(now + uint64(hold/time.Microsecond))
}
