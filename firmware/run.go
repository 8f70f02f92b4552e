package firmware

import (
	"fmt"

	"hueloop/core"
	"hueloop/indicator"
	"hueloop/usb"
)

// RunBlocking runs the indicator to completion with busy-wait delays, then
// quiesces the board and halts. It only returns on a configuration error,
// or if the board's trap returns control by panicking.
func RunBlocking(b *Board, cfg Config) error {
	cfg.applyDefaults()
	if cfg.Mode != ModeBlocking {
		return fmt.Errorf("%w: %s", ErrWrongMode, cfg.Mode)
	}
	if err := b.validate(cfg.Mode); err != nil {
		return err
	}
	core.SetLogLevel(cfg.LogLevel)
	log := core.Logger(core.ComponentFirmware)

	var base *core.ExtendedCounter
	if b.Counter != nil {
		base = &core.ExtendedCounter{HW: b.Counter, Bits: cfg.CounterBits}
	}
	timer := core.NewBlockingTimer(b.Delayer, base)

	log.Info("indicator starting", "mode", cfg.Mode.String(), "cycles", cfg.Indicator.Cycles)
	indicator.New(b.Output, cfg.Indicator).Run(timer)

	core.Halt(b.Quiescer, b.Trap)
	return nil
}

// TaskSet is the cooperative build: a dispatcher running the USB pump, the
// echo session and the indicator.
type TaskSet struct {
	*core.Dispatcher
	Echo      *usb.Echo
	Indicator *indicator.Machine
}

// NewTaskSet spawns the cooperative tasks on a new dispatcher. The caller
// starts it with Run, which does not return while the echo task lives.
func NewTaskSet(b *Board, cfg Config) (*TaskSet, error) {
	cfg.applyDefaults()
	if cfg.Mode != ModeCooperative {
		return nil, fmt.Errorf("%w: %s", ErrWrongMode, cfg.Mode)
	}
	if err := b.validate(cfg.Mode); err != nil {
		return nil, err
	}
	core.SetLogLevel(cfg.LogLevel)

	ts := &TaskSet{
		Dispatcher: core.NewDispatcher(b.Clock, b.Idler),
		Echo:       usb.NewEcho(b.Class),
		Indicator:  indicator.New(b.Output, cfg.Indicator),
	}
	tasks := []struct {
		name string
		task core.Task
	}{
		{"usb", usb.NewPump(b.Transport)},
		{"echo", ts.Echo},
		{"indicator", indicator.NewTask(ts.Indicator)},
	}
	for _, t := range tasks {
		if err := ts.Spawn(t.name, t.task); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", t.name, err)
		}
	}
	return ts, nil
}
