package core

import (
	"errors"
	"log/slog"
)

// MaxTasks is the size of the dispatcher's task table. The task set is known
// at compile time; the table never grows.
const MaxTasks = 4

// ErrTooManyTasks is returned by Spawn when the task table is full.
var ErrTooManyTasks = errors.New("sched: task table full")

// WakeKind says what a suspended task waits for
type WakeKind uint8

const (
	WakeDone   WakeKind = iota // Task finished; never polled again
	WakeYield                  // Ready again on the next pass
	WakeAt                     // Ready once the clock reaches At
	WakeSignal                 // Ready once Signal is raised
)

// Wake is the condition under which a suspended task resumes.
type Wake struct {
	Kind   WakeKind
	At     uint64
	Signal *Signal
}

// Done ends the task.
func Done() Wake { return Wake{Kind: WakeDone} }

// Yield suspends until the next dispatcher pass.
func Yield() Wake { return Wake{Kind: WakeYield} }

// Until suspends until the clock reaches deadline (microseconds).
func Until(deadline uint64) Wake { return Wake{Kind: WakeAt, At: deadline} }

// OnSignal suspends until s is raised.
func OnSignal(s *Signal) Wake { return Wake{Kind: WakeSignal, Signal: s} }

// Task is one unit of cooperative work. Poll runs synchronous steps until
// the task has to wait and returns the wake condition. Each call must
// return in bounded, short time: nothing else runs until it does.
type Task interface {
	Poll(now uint64) Wake
}

// Clock is a monotonic microsecond time source.
type Clock interface {
	Now() uint64
}

// Idler is called when no task was ready during a pass. deadline is the
// earliest timer wake, valid when ok is true.
type Idler interface {
	Idle(deadline uint64, ok bool)
}

type taskSlot struct {
	name string
	task Task
	wake Wake
}

// Dispatcher runs a fixed set of tasks round-robin on one goroutine,
// resuming each only at its declared suspension points.
type Dispatcher struct {
	clock Clock
	idle  Idler
	slots [MaxTasks]taskSlot
	count int
	live  int
	log   *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(clock Clock, idle Idler) *Dispatcher {
	return &Dispatcher{
		clock: clock,
		idle:  idle,
		log:   Logger(ComponentSched),
	}
}

// Spawn admits a task. It is first polled on the next pass.
func (d *Dispatcher) Spawn(name string, t Task) error {
	if d.count == len(d.slots) {
		return ErrTooManyTasks
	}
	d.slots[d.count] = taskSlot{name: name, task: t, wake: Yield()}
	d.count++
	d.live++
	d.log.Debug("task spawned", "task", name)
	return nil
}

// Live returns the number of tasks that have not finished.
func (d *Dispatcher) Live() int {
	return d.live
}

// ready reports whether the slot's wake condition holds, consuming a
// pending signal so that a raise during the coming poll is kept.
func ready(s *taskSlot, now uint64) bool {
	switch s.wake.Kind {
	case WakeYield:
		return true
	case WakeAt:
		return now >= s.wake.At
	case WakeSignal:
		if !s.wake.Signal.Pending() {
			return false
		}
		s.wake.Signal.Clear()
		return true
	default:
		return false
	}
}

// RunOnce makes one pass over the task table, polling every ready task in
// spawn order. It returns the number of tasks polled.
func (d *Dispatcher) RunOnce() int {
	polled := 0
	for i := 0; i < d.count; i++ {
		s := &d.slots[i]
		if s.wake.Kind == WakeDone {
			continue
		}
		now := d.clock.Now()
		if !ready(s, now) {
			continue
		}
		s.wake = s.task.Poll(now)
		polled++
		if s.wake.Kind == WakeDone {
			d.live--
			d.log.Debug("task finished", "task", s.name)
		}
	}
	return polled
}

// NextDeadline returns the earliest timer wake among suspended tasks.
func (d *Dispatcher) NextDeadline() (uint64, bool) {
	var earliest uint64
	found := false
	for i := 0; i < d.count; i++ {
		w := d.slots[i].wake
		if w.Kind != WakeAt {
			continue
		}
		if !found || w.At < earliest {
			earliest = w.At
			found = true
		}
	}
	return earliest, found
}

// Run dispatches until every task has finished. Tasks that loop forever
// keep it running forever.
func (d *Dispatcher) Run() {
	for d.live > 0 {
		if d.RunOnce() == 0 {
			d.idle.Idle(d.NextDeadline())
		}
	}
	d.log.Info("all tasks finished")
}
