package usb

import (
	"testing"

	"hueloop/core"
)

type countingTransport struct {
	serviced int
	irq      *core.Signal
}

func (c *countingTransport) Service()             { c.serviced++ }
func (c *countingTransport) Events() *core.Signal { return c.irq }

func TestPumpWaitsOnInterrupt(t *testing.T) {
	tr := &countingTransport{irq: &core.Signal{}}
	w := NewPump(tr).Poll(500)

	if tr.serviced != 1 {
		t.Errorf("Expected one Service call, got %d", tr.serviced)
	}
	if w.Kind != core.WakeSignal || w.Signal != tr.irq {
		t.Errorf("Expected wait on transport signal, got %+v", w)
	}
}

func TestPumpPollsWithoutInterrupt(t *testing.T) {
	tr := &countingTransport{}
	clock := &core.FakeClock{}
	d := core.NewDispatcher(clock, clock)
	if err := d.Spawn("usb", NewPump(tr)); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		d.RunOnce()
		if next, ok := d.NextDeadline(); ok {
			clock.Idle(next, ok)
		}
	}
	if tr.serviced != 5 {
		t.Errorf("Expected 5 Service calls, got %d", tr.serviced)
	}
	if want := uint64(5 * PollInterval); clock.Now() != want {
		t.Errorf("Expected clock at %d, got %d", want, clock.Now())
	}
}
