package firmware

import (
	"errors"
	"testing"
	"time"

	"hueloop/core"
	"hueloop/indicator"
	"hueloop/usb"
)

// levelOutput keeps the last level of each line
type levelOutput struct {
	levels [indicator.NumLines]bool
	sets   int
}

func (o *levelOutput) Set(line indicator.Line, high bool) {
	o.levels[line] = high
	o.sets++
}

// sumDelayer records busy-wait requests
type sumDelayer struct {
	calls int
	total uint64
}

func (d *sumDelayer) Delay(us uint32) {
	d.calls++
	d.total += uint64(us)
}

type flagQuiescer struct {
	quiesced bool
}

func (q *flagQuiescer) Quiesce() {
	q.quiesced = true
}

type halted struct{}

func trapOnce() {
	panic(halted{})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(ModeCooperative)

	if cfg.Mode != ModeCooperative {
		t.Errorf("Expected mode %v, got %v", ModeCooperative, cfg.Mode)
	}
	if cfg.Indicator.Cycles != indicator.DefaultCycles {
		t.Errorf("Expected %d cycles, got %d", indicator.DefaultCycles, cfg.Indicator.Cycles)
	}
	if cfg.Indicator.Blinks != indicator.DefaultBlinks {
		t.Errorf("Expected %d blinks, got %d", indicator.DefaultBlinks, cfg.Indicator.Blinks)
	}
	if cfg.Indicator.Period != indicator.DefaultPeriod {
		t.Errorf("Expected period %v, got %v", indicator.DefaultPeriod, cfg.Indicator.Period)
	}
	if cfg.CounterBits != DefaultCounterBits {
		t.Errorf("Expected %d counter bits, got %d", DefaultCounterBits, cfg.CounterBits)
	}
}

func TestRunBlockingHalts(t *testing.T) {
	out := &levelOutput{}
	delay := &sumDelayer{}
	q := &flagQuiescer{}
	b := &Board{Output: out, Delayer: delay, Quiescer: q, Trap: trapOnce}

	func() {
		defer func() {
			if _, ok := recover().(halted); !ok {
				t.Fatal("Expected RunBlocking to end in the trap")
			}
		}()
		RunBlocking(b, DefaultConfig(ModeBlocking))
		t.Error("RunBlocking returned")
	}()

	if !q.quiesced {
		t.Error("Expected board quiesced before halting")
	}
	edges := indicator.DefaultCycles * indicator.NumColors * 2 * indicator.DefaultBlinks
	want := uint64(edges) * uint64(indicator.DefaultPeriod/time.Microsecond)
	if delay.total != want {
		t.Errorf("Expected %d us of delay, got %d", want, delay.total)
	}
	if delay.calls != edges {
		t.Errorf("Expected one delay per edge (%d), got %d", edges, delay.calls)
	}
	if !out.levels[indicator.Heartbeat] || !out.levels[indicator.LineBlue] {
		t.Error("Expected heartbeat and blue lines high at halt")
	}
}

func TestRunBlockingWithCounter(t *testing.T) {
	b := &Board{
		Output:  &levelOutput{},
		Delayer: &sumDelayer{},
		Counter: fixedCounter(42),
		Trap:    trapOnce,
	}
	cfg := DefaultConfig(ModeBlocking)
	cfg.Indicator.Cycles = 1

	defer func() {
		if _, ok := recover().(halted); !ok {
			t.Fatal("Expected RunBlocking to end in the trap")
		}
	}()
	RunBlocking(b, cfg)
}

type fixedCounter uint32

func (c fixedCounter) Count() uint32 {
	return uint32(c)
}

func TestRunnerValidation(t *testing.T) {
	link := usb.NewLoopback(0)
	clock := &core.FakeClock{}

	tests := []struct {
		name  string
		board *Board
		mode  Mode
	}{
		{"no output", &Board{Delayer: &sumDelayer{}, Trap: trapOnce}, ModeBlocking},
		{"no delayer", &Board{Output: &levelOutput{}, Trap: trapOnce}, ModeBlocking},
		{"no trap", &Board{Output: &levelOutput{}, Delayer: &sumDelayer{}}, ModeBlocking},
		{"no clock", &Board{Output: &levelOutput{}, Idler: clock, Transport: link.Transport(), Class: link}, ModeCooperative},
		{"no class", &Board{Output: &levelOutput{}, Clock: clock, Idler: clock, Transport: link.Transport()}, ModeCooperative},
		{"no transport", &Board{Output: &levelOutput{}, Clock: clock, Idler: clock, Class: link}, ModeCooperative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.mode == ModeBlocking {
				err = RunBlocking(tt.board, DefaultConfig(tt.mode))
			} else {
				_, err = NewTaskSet(tt.board, DefaultConfig(tt.mode))
			}
			if err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestRunnerWrongMode(t *testing.T) {
	b := &Board{Output: &levelOutput{}, Delayer: &sumDelayer{}, Trap: trapOnce}
	if err := RunBlocking(b, DefaultConfig(ModeCooperative)); !errors.Is(err, ErrWrongMode) {
		t.Errorf("RunBlocking: expected ErrWrongMode, got %v", err)
	}
	if _, err := NewTaskSet(b, DefaultConfig(ModeBlocking)); !errors.Is(err, ErrWrongMode) {
		t.Errorf("NewTaskSet: expected ErrWrongMode, got %v", err)
	}
}

func TestTaskSetEchoesWhileIndicatorRuns(t *testing.T) {
	out := &levelOutput{}
	link := usb.NewLoopback(0)
	clock := &core.FakeClock{}
	b := &Board{Output: out, Clock: clock, Idler: clock, Transport: link.Transport(), Class: link}

	cfg := DefaultConfig(ModeCooperative)
	cfg.Indicator.Cycles = 1
	ts, err := NewTaskSet(b, cfg)
	if err != nil {
		t.Fatalf("NewTaskSet failed: %v", err)
	}
	if ts.Live() != 3 {
		t.Fatalf("Expected 3 tasks, got %d", ts.Live())
	}

	link.Open()
	if err := link.Send([]byte("ping")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	buf := make([]byte, usb.MaxPacketSize)
	var echoed []byte
	for i := 0; i < 10000 && !ts.Indicator.Done(); i++ {
		if ts.RunOnce() == 0 {
			clock.Idle(ts.NextDeadline())
		}
		if echoed == nil {
			if n, err := link.Recv(buf); err == nil {
				echoed = append([]byte{}, buf[:n]...)
			}
		}
	}

	if string(echoed) != "ping" {
		t.Errorf("Expected ping echoed, got %q", echoed)
	}
	if !ts.Indicator.Done() {
		t.Fatal("indicator did not finish")
	}
	if ts.Live() != 2 {
		t.Errorf("Expected pump and echo still live, got %d tasks", ts.Live())
	}
	if st := ts.Echo.Stats(); st.Sessions != 1 || st.Packets != 1 {
		t.Errorf("Unexpected echo stats %+v", st)
	}

	edges := indicator.NumColors * 2 * indicator.DefaultBlinks
	want := uint64(edges) * uint64(indicator.DefaultPeriod/time.Microsecond)
	if clock.Now() != want {
		t.Errorf("Expected indicator to finish at %d us, got %d", want, clock.Now())
	}
}

func TestModeString(t *testing.T) {
	if ModeBlocking.String() != "blocking" || ModeCooperative.String() != "cooperative" {
		t.Errorf("Unexpected mode names %q, %q", ModeBlocking, ModeCooperative)
	}
}
