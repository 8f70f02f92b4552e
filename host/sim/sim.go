// Package sim runs the cooperative firmware build in-process, attached to
// an in-memory USB link, and exposes the host end as a serial port.
package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"hueloop/core"
	"hueloop/firmware"
	"hueloop/indicator"
	"hueloop/usb"
)

// Defaults for the simulated device
const (
	DefaultReadTimeout = 100 * time.Millisecond
	idleMax            = 200 // Microseconds
	retryInterval      = 50 * time.Microsecond
)

// ErrClosed is returned by operations on a closed Device
var ErrClosed = errors.New("sim: device closed")

// Config tunes the simulated device.
type Config struct {
	Firmware    firmware.Config
	ReadTimeout time.Duration
	Log         *slog.Logger
}

// logOutput records indicator lines and logs color changes
type logOutput struct {
	mu     sync.Mutex
	levels [indicator.NumLines]bool
	log    *slog.Logger
}

func (o *logOutput) Set(line indicator.Line, high bool) {
	o.mu.Lock()
	o.levels[line] = high
	o.mu.Unlock()
	if line != indicator.Heartbeat {
		o.log.Debug("indicator", "line", line.String(), "high", high)
	}
}

// Device is a running simulated firmware. It implements serial.Port.
type Device struct {
	link    *usb.Loopback
	ts      *firmware.TaskSet
	timeout time.Duration
	log     *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}

	rbuf    [usb.MaxPacketSize]byte
	pending []byte // Received packet bytes not yet returned by Read

	closeOnce sync.Once
}

// Start boots the cooperative firmware on a loopback link and opens the
// host end. The firmware runs until ctx is cancelled or Close is called.
func Start(ctx context.Context, cfg Config) (*Device, error) {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}
	cfg.Firmware.Mode = firmware.ModeCooperative

	link := usb.NewLoopback(0)
	clock := core.NewMonotonicClock()
	idler := &core.SleepIdler{Clock: clock, Max: idleMax}
	b := &firmware.Board{
		Output:    &logOutput{log: cfg.Log},
		Clock:     clock,
		Idler:     idler,
		Class:     link,
		Transport: link.Transport(),
	}
	ts, err := firmware.NewTaskSet(b, cfg.Firmware)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	d := &Device{
		link:    link,
		ts:      ts,
		timeout: cfg.ReadTimeout,
		log:     cfg.Log,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go d.run(ctx, idler)

	link.Open()
	d.log.Info("simulated device started")
	return d, nil
}

// run drives the dispatcher until ctx is done. Run itself never returns
// while the echo task lives, so the loop is spelled out here.
func (d *Device) run(ctx context.Context, idler core.Idler) {
	defer close(d.done)
	for ctx.Err() == nil {
		if d.ts.RunOnce() == 0 {
			idler.Idle(d.ts.NextDeadline())
		}
	}
}

// Write sends p to the device, split into packets.
func (d *Device) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		end := min(written+usb.MaxPacketSize, len(p))
		if err := d.send(p[written:end]); err != nil {
			return written, err
		}
		written = end
	}
	return written, nil
}

func (d *Device) send(packet []byte) error {
	deadline := time.Now().Add(d.timeout)
	for {
		err := d.link.Send(packet)
		if !errors.Is(err, usb.ErrWouldBlock) {
			return d.mapErr(err)
		}
		if time.Now().After(deadline) {
			return io.ErrShortWrite
		}
		time.Sleep(retryInterval)
	}
}

// Read returns echoed bytes. Like a serial port with a read timeout, it
// returns 0 and io.EOF when nothing arrives within the timeout.
func (d *Device) Read(b []byte) (int, error) {
	deadline := time.Now().Add(d.timeout)
	for len(d.pending) == 0 {
		n, err := d.link.Recv(d.rbuf[:])
		switch {
		case err == nil:
			d.pending = d.rbuf[:n]
		case errors.Is(err, usb.ErrWouldBlock):
			if time.Now().After(deadline) {
				return 0, io.EOF
			}
			time.Sleep(retryInterval)
		default:
			return 0, d.mapErr(err)
		}
	}
	n := copy(b, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *Device) mapErr(err error) error {
	if errors.Is(err, usb.ErrEndpointDisabled) {
		return ErrClosed
	}
	return err
}

// Flush drops received bytes not yet read
func (d *Device) Flush() error {
	d.pending = nil
	for {
		if _, err := d.link.Recv(d.rbuf[:]); err != nil {
			return nil
		}
	}
}

// Close disconnects the host end and stops the firmware.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.link.Close()
		d.cancel()
		<-d.done
		st := d.ts.Echo.Stats()
		d.log.Info("simulated device stopped",
			"sessions", st.Sessions, "packets", st.Packets, "bytes", st.Bytes)
	})
	return nil
}

// Stats returns the device's echo counters. It is only valid after Close.
func (d *Device) Stats() usb.Stats {
	return d.ts.Echo.Stats()
}
